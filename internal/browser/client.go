// Package browser is the protocol boundary of the perception pipeline: it
// fetches the three raw page payloads (DOM tree, layout snapshot,
// accessibility tree) over the Chrome DevTools Protocol and executes the thin
// per-handle geometry queries automation callers need after an extraction.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromedp/cdproto/accessibility"
	protocdp "github.com/chromedp/cdproto/cdp"
	cdpdom "github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/domsnapshot"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/neboloop/pagelens/internal/dom"
)

// PageData is one page's raw perception input, already converted to the
// pipeline's types.
type PageData struct {
	URL     string
	Title   string
	Root    *dom.RawNode
	Samples map[protocdp.BackendNodeID]*dom.LayoutSample
	AX      map[protocdp.BackendNodeID]*dom.AXData
}

// BoxModel is the box geometry of one element: content/padding/border/margin
// quads (8 floats each, clockwise from top-left) plus layout size.
type BoxModel struct {
	Content []float64
	Padding []float64
	Border  []float64
	Margin  []float64
	Width   int64
	Height  int64
}

// Client is what the perception layer needs from a browser connection. The
// ctx passed to every call must carry a chromedp target.
type Client interface {
	// FetchPage retrieves the three raw payloads concurrently. It fails as
	// a whole: a partial fetch is never handed to the pipeline.
	FetchPage(ctx context.Context) (*PageData, error)

	ResolveNode(ctx context.Context, id protocdp.BackendNodeID) (*runtime.RemoteObject, error)
	GetBoxModel(ctx context.Context, id protocdp.BackendNodeID) (*BoxModel, error)
	CenterPoint(ctx context.Context, id protocdp.BackendNodeID) (x, y float64, err error)
	ScrollIntoView(ctx context.Context, id protocdp.BackendNodeID) error
	Focus(ctx context.Context, id protocdp.BackendNodeID) error
}

// ChromeClient implements Client over chromedp.
type ChromeClient struct {
	logger *slog.Logger
}

// NewChromeClient returns a client; the chromedp context comes in per call.
func NewChromeClient() *ChromeClient {
	return &ChromeClient{
		logger: slog.Default().With("component", "cdp-client"),
	}
}

// FetchPage issues the DOM, snapshot, and accessibility fetches concurrently;
// they have no ordering dependency on each other. Any failure abandons the
// whole fetch.
func (c *ChromeClient) FetchPage(ctx context.Context) (*PageData, error) {
	var (
		wg sync.WaitGroup

		root    *protocdp.Node
		docs    []*domsnapshot.DocumentSnapshot
		strs    []string
		axNodes []*accessibility.Node

		domErr, snapErr, axErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		domErr = chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			root, err = cdpdom.GetDocument().WithDepth(-1).WithPierce(true).Do(ctx)
			return err
		}))
	}()
	go func() {
		defer wg.Done()
		snapErr = chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			docs, strs, err = domsnapshot.CaptureSnapshot(dom.SnapshotStyles).
				WithIncludePaintOrder(true).
				WithIncludeDOMRects(true).
				Do(ctx)
			return err
		}))
	}()
	go func() {
		defer wg.Done()
		axErr = chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			axNodes, err = accessibility.GetFullAXTree().Do(ctx)
			return err
		}))
	}()
	wg.Wait()

	if domErr != nil {
		return nil, wrapBrowserError(domErr, "fetch DOM tree")
	}
	if snapErr != nil {
		return nil, wrapBrowserError(snapErr, "fetch layout snapshot")
	}
	if axErr != nil {
		return nil, wrapBrowserError(axErr, "fetch accessibility tree")
	}

	// Snapshot rectangles arrive in device pixels; the ratio converts them
	// back to CSS pixels.
	var dpr float64
	if err := chromedp.Run(ctx, chromedp.Evaluate("window.devicePixelRatio", &dpr)); err != nil {
		c.logger.Warn("device pixel ratio unavailable, assuming 1", "error", err)
		dpr = 1
	}

	data := &PageData{
		Root:    dom.RawTreeFromCDP(root),
		Samples: dom.SamplesFromSnapshot(docs, strs, dom.SnapshotStyles, dpr),
		AX:      dom.AXFromTree(axNodes),
	}

	// URL and title ride along for failure reporting; their absence is not
	// an error.
	if err := chromedp.Run(ctx, chromedp.Location(&data.URL), chromedp.Title(&data.Title)); err != nil {
		c.logger.Debug("page location unavailable", "error", err)
	}

	c.logger.Debug("page payloads fetched",
		"samples", len(data.Samples),
		"ax_nodes", len(data.AX))

	return data, nil
}

// ResolveNode resolves a handle to a remote JavaScript object.
func (c *ChromeClient) ResolveNode(ctx context.Context, id protocdp.BackendNodeID) (*runtime.RemoteObject, error) {
	var obj *runtime.RemoteObject
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		obj, err = cdpdom.ResolveNode().WithBackendNodeID(id).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, wrapBrowserError(err, "resolve node")
	}
	return obj, nil
}

// GetBoxModel returns the element's box geometry.
func (c *ChromeClient) GetBoxModel(ctx context.Context, id protocdp.BackendNodeID) (*BoxModel, error) {
	var box *cdpdom.BoxModel
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		box, err = cdpdom.GetBoxModel().WithBackendNodeID(id).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, wrapBrowserError(err, "get box model")
	}
	if box == nil {
		return nil, fmt.Errorf("get box model failed: empty result")
	}
	return &BoxModel{
		Content: box.Content,
		Padding: box.Padding,
		Border:  box.Border,
		Margin:  box.Margin,
		Width:   box.Width,
		Height:  box.Height,
	}, nil
}

// CenterPoint returns the visual center of the element's content quad.
func (c *ChromeClient) CenterPoint(ctx context.Context, id protocdp.BackendNodeID) (float64, float64, error) {
	box, err := c.GetBoxModel(ctx, id)
	if err != nil {
		return 0, 0, err
	}
	if len(box.Content) < 8 {
		return 0, 0, fmt.Errorf("get center point failed: no clickable area")
	}

	minX := min(box.Content[0], box.Content[2], box.Content[4], box.Content[6])
	maxX := max(box.Content[0], box.Content[2], box.Content[4], box.Content[6])
	minY := min(box.Content[1], box.Content[3], box.Content[5], box.Content[7])
	maxY := max(box.Content[1], box.Content[3], box.Content[5], box.Content[7])

	return (minX + maxX) / 2, (minY + maxY) / 2, nil
}

// ScrollIntoView scrolls the element into the viewport if needed.
func (c *ChromeClient) ScrollIntoView(ctx context.Context, id protocdp.BackendNodeID) error {
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return cdpdom.ScrollIntoViewIfNeeded().WithBackendNodeID(id).Do(ctx)
	}))
	if err != nil {
		return wrapBrowserError(err, "scroll into view")
	}
	return nil
}

// Focus gives the element input focus.
func (c *ChromeClient) Focus(ctx context.Context, id protocdp.BackendNodeID) error {
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return cdpdom.Focus().WithBackendNodeID(id).Do(ctx)
	}))
	if err != nil {
		return wrapBrowserError(err, "focus")
	}
	return nil
}
