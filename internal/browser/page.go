package browser

import (
	"context"
	"log/slog"
	"sync"

	protocdp "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/runtime"

	"github.com/neboloop/pagelens/internal/dom"
)

// Page coordinates perception for one monitored page/tab: it owns that
// page's extractor (and thus its tree builder) and the current extraction.
// Pages are independent; concurrent monitoring of several tabs shares no
// mutable state as long as each tab has its own Page.
type Page struct {
	mu sync.Mutex

	logger    *slog.Logger
	client    Client
	extractor *dom.Extractor

	current *dom.Extraction
	url     string
	title   string
}

// NewPage returns a perception coordinator for one page.
func NewPage(client Client, opts dom.Options) *Page {
	return &Page{
		logger:    slog.Default().With("component", "page"),
		client:    client,
		extractor: dom.NewExtractor(opts),
	}
}

// Perceive fetches the raw payloads and runs the pipeline. The three fetches
// run concurrently inside the client; the pipeline itself is synchronous and
// never suspends, so there is no mid-pipeline cancellation point - either the
// fetch stage fails and the pass is abandoned, or the pass completes.
//
// A failed pass leaves the previous extraction (and any selector map callers
// still hold) untouched.
func (p *Page) Perceive(ctx context.Context) (*dom.Extraction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := p.client.FetchPage(ctx)
	if err != nil {
		p.logger.Warn("perception fetch failed", "url", p.url, "error", err)
		return nil, NewFailure(err, p.url, p.title)
	}
	p.url = data.URL
	p.title = data.Title

	extraction := p.extractor.Extract(data.Root, data.Samples, data.AX)
	p.current = extraction

	p.logger.Debug("page perceived",
		"url", p.url,
		"pass", extraction.PassID,
		"interactive", extraction.Stats.Interactive)

	return extraction, nil
}

// Current returns the most recent extraction, or nil before the first pass.
// Its selector map stays valid until the next Perceive replaces it.
func (p *Page) Current() *dom.Extraction {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Element looks a handle up in the current extraction's selector map.
func (p *Page) Element(id protocdp.BackendNodeID) (*dom.EnhancedNode, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil, false
	}
	node, ok := p.current.Selectors[id]
	return node, ok
}

// The handle-based geometry passthroughs below add no pipeline logic; they
// forward to the protocol client and surface failures as Failure results.
// Handles from a superseded extraction are not validated here - they fail at
// node resolution with a refresh hint.

// ResolveHandle resolves a handle to a remote object.
func (p *Page) ResolveHandle(ctx context.Context, id protocdp.BackendNodeID) (*runtime.RemoteObject, error) {
	obj, err := p.client.ResolveNode(ctx, id)
	if err != nil {
		return nil, NewFailure(err, p.url, p.title)
	}
	return obj, nil
}

// HandleBoxModel returns a handle's box geometry.
func (p *Page) HandleBoxModel(ctx context.Context, id protocdp.BackendNodeID) (*BoxModel, error) {
	box, err := p.client.GetBoxModel(ctx, id)
	if err != nil {
		return nil, NewFailure(err, p.url, p.title)
	}
	return box, nil
}

// HandleCenter returns a handle's visual center point. When the protocol
// cannot produce a content quad but the current extraction still knows the
// element's geometry, the center of its extracted bounds is used instead.
func (p *Page) HandleCenter(ctx context.Context, id protocdp.BackendNodeID) (float64, float64, error) {
	x, y, err := p.client.CenterPoint(ctx, id)
	if err == nil {
		return x, y, nil
	}
	if node, ok := p.Element(id); ok && node.AbsolutePosition != nil && !node.AbsolutePosition.Empty() {
		return node.AbsolutePosition.CenterX(), node.AbsolutePosition.CenterY(), nil
	}
	return 0, 0, NewFailure(err, p.url, p.title)
}

// ScrollHandleIntoView scrolls a handle's element into the viewport.
func (p *Page) ScrollHandleIntoView(ctx context.Context, id protocdp.BackendNodeID) error {
	if err := p.client.ScrollIntoView(ctx, id); err != nil {
		return NewFailure(err, p.url, p.title)
	}
	return nil
}

// FocusHandle focuses a handle's element.
func (p *Page) FocusHandle(ctx context.Context, id protocdp.BackendNodeID) error {
	if err := p.client.Focus(ctx, id); err != nil {
		return NewFailure(err, p.url, p.title)
	}
	return nil
}
