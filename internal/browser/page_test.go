package browser

import (
	"context"
	"errors"
	"strings"
	"testing"

	protocdp "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/runtime"

	"github.com/neboloop/pagelens/internal/dom"
	"github.com/neboloop/pagelens/internal/geometry"
)

// fakeClient serves canned payloads and records per-handle calls.
type fakeClient struct {
	data    *PageData
	fetchEr error

	resolveErr error
	resolved   []protocdp.BackendNodeID

	centerErr error
}

func (f *fakeClient) FetchPage(ctx context.Context) (*PageData, error) {
	if f.fetchEr != nil {
		return nil, f.fetchEr
	}
	return f.data, nil
}

func (f *fakeClient) ResolveNode(ctx context.Context, id protocdp.BackendNodeID) (*runtime.RemoteObject, error) {
	f.resolved = append(f.resolved, id)
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return &runtime.RemoteObject{}, nil
}

func (f *fakeClient) GetBoxModel(ctx context.Context, id protocdp.BackendNodeID) (*BoxModel, error) {
	return &BoxModel{Width: 10, Height: 10}, nil
}

func (f *fakeClient) CenterPoint(ctx context.Context, id protocdp.BackendNodeID) (float64, float64, error) {
	if f.centerErr != nil {
		return 0, 0, f.centerErr
	}
	return 5, 5, nil
}

func (f *fakeClient) ScrollIntoView(ctx context.Context, id protocdp.BackendNodeID) error {
	return nil
}

func (f *fakeClient) Focus(ctx context.Context, id protocdp.BackendNodeID) error {
	return nil
}

// buttonPage is a minimal page with one interactive button, backend ID 4.
func buttonPage() *PageData {
	button := &dom.RawNode{BackendID: 4, NodeType: protocdp.NodeTypeElement, Tag: "button"}
	body := &dom.RawNode{BackendID: 3, NodeType: protocdp.NodeTypeElement, Tag: "body", Children: []*dom.RawNode{button}}
	button.Parent = body
	root := &dom.RawNode{BackendID: 1, NodeType: protocdp.NodeTypeDocument, Children: []*dom.RawNode{body}}
	body.Parent = root

	return &PageData{
		URL:   "https://example.com",
		Title: "Example",
		Root:  root,
		Samples: map[protocdp.BackendNodeID]*dom.LayoutSample{
			4: {
				Bounds: &geometry.Rect{X: 10, Y: 10, Width: 60, Height: 24},
				Styles: map[string]string{"display": "block", "visibility": "visible", "opacity": "1"},
			},
		},
	}
}

func TestPagePerceive(t *testing.T) {
	client := &fakeClient{data: buttonPage()}
	page := NewPage(client, dom.DefaultOptions())

	if page.Current() != nil {
		t.Fatal("no extraction exists before the first pass")
	}

	extraction, err := page.Perceive(context.Background())
	if err != nil {
		t.Fatalf("Perceive failed: %v", err)
	}
	if len(extraction.Selectors) != 1 {
		t.Fatalf("got %d selectors, want 1", len(extraction.Selectors))
	}
	if page.Current() != extraction {
		t.Fatal("Current should return the latest extraction")
	}

	node, ok := page.Element(4)
	if !ok || node.Tag != "button" {
		t.Fatalf("Element(4) = %v, %v", node, ok)
	}
	if _, ok := page.Element(99); ok {
		t.Fatal("unknown handle must not resolve")
	}
}

func TestPagePerceiveFailureKeepsPreviousExtraction(t *testing.T) {
	client := &fakeClient{data: buttonPage()}
	page := NewPage(client, dom.DefaultOptions())

	first, err := page.Perceive(context.Background())
	if err != nil {
		t.Fatalf("Perceive failed: %v", err)
	}

	client.fetchEr = errors.New("websocket: connection reset")
	_, err = page.Perceive(context.Background())
	if err == nil {
		t.Fatal("expected the second pass to fail")
	}
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("error should be a *Failure, got %T", err)
	}
	if failure.URL != "https://example.com" {
		t.Fatalf("failure should carry the last known URL, got %q", failure.URL)
	}

	if page.Current() != first {
		t.Fatal("a failed pass must leave the previous extraction intact")
	}
	if _, ok := page.Element(4); !ok {
		t.Fatal("handles from the previous pass stay resolvable")
	}
}

func TestPageNewPassInvalidatesOldHandles(t *testing.T) {
	client := &fakeClient{data: buttonPage()}
	page := NewPage(client, dom.DefaultOptions())

	first, _ := page.Perceive(context.Background())
	second, _ := page.Perceive(context.Background())

	if first.PassID == second.PassID {
		t.Fatal("each pass gets its own ID")
	}
	if first.Selectors[4] == second.Selectors[4] {
		t.Fatal("a new pass must rebuild its nodes")
	}
}

func TestPageResolveHandleFailure(t *testing.T) {
	client := &fakeClient{data: buttonPage(), resolveErr: errors.New("could not find node with given id")}
	page := NewPage(client, dom.DefaultOptions())
	if _, err := page.Perceive(context.Background()); err != nil {
		t.Fatalf("Perceive failed: %v", err)
	}

	_, err := page.ResolveHandle(context.Background(), 4)
	if err == nil {
		t.Fatal("expected resolution to fail")
	}
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("error should be a *Failure, got %T", err)
	}
	if failure.URL != "https://example.com" {
		t.Fatalf("failure should carry page context, got %q", failure.URL)
	}
	if len(client.resolved) != 1 || client.resolved[0] != 4 {
		t.Fatalf("client saw %v, want [4]", client.resolved)
	}
}

func TestPageHandleCenterFallsBackToExtractedBounds(t *testing.T) {
	client := &fakeClient{data: buttonPage(), centerErr: errors.New("no clickable area for node")}
	page := NewPage(client, dom.DefaultOptions())
	ctx := context.Background()
	if _, err := page.Perceive(ctx); err != nil {
		t.Fatalf("Perceive failed: %v", err)
	}

	// The button's extracted bounds are (10, 10, 60, 24).
	x, y, err := page.HandleCenter(ctx, 4)
	if err != nil {
		t.Fatalf("HandleCenter should fall back to extracted geometry: %v", err)
	}
	if x != 40 || y != 22 {
		t.Fatalf("fallback center = (%v, %v), want (40, 22)", x, y)
	}

	// A handle the current extraction does not know still fails.
	if _, _, err := page.HandleCenter(ctx, 99); err == nil {
		t.Fatal("unknown handle must not get a fallback center")
	}
}

func TestPageGeometryPassthroughs(t *testing.T) {
	client := &fakeClient{data: buttonPage()}
	page := NewPage(client, dom.DefaultOptions())
	ctx := context.Background()
	if _, err := page.Perceive(ctx); err != nil {
		t.Fatalf("Perceive failed: %v", err)
	}

	box, err := page.HandleBoxModel(ctx, 4)
	if err != nil || box.Width != 10 {
		t.Fatalf("HandleBoxModel = %+v, %v", box, err)
	}
	x, y, err := page.HandleCenter(ctx, 4)
	if err != nil || x != 5 || y != 5 {
		t.Fatalf("HandleCenter = (%v, %v), %v", x, y, err)
	}
	if err := page.ScrollHandleIntoView(ctx, 4); err != nil {
		t.Fatalf("ScrollHandleIntoView: %v", err)
	}
	if err := page.FocusHandle(ctx, 4); err != nil {
		t.Fatalf("FocusHandle: %v", err)
	}
	if !strings.Contains(page.Current().Tree, "[4]<button/>") {
		t.Fatalf("tree missing button line:\n%s", page.Current().Tree)
	}
}
