package dom

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/cdp"

	"github.com/neboloop/pagelens/internal/geometry"
)

// DefaultViewportTolerance is how far outside an ancestor frame's client
// viewport a node's bounds may fall while still counting as visible. Slightly
// offscreen elements stay targetable after a small scroll.
const DefaultViewportTolerance = 100.0

// overflowScrollValues are the computed overflow values that permit scrolling.
var overflowScrollValues = map[string]bool{
	"auto":    true,
	"scroll":  true,
	"overlay": true,
}

// scrollableTagFallback is consulted when a node has scroll overflow but no
// computed style was captured for it.
var scrollableTagFallback = map[string]bool{
	"html":     true,
	"body":     true,
	"div":      true,
	"main":     true,
	"section":  true,
	"article":  true,
	"aside":    true,
	"ul":       true,
	"ol":       true,
	"textarea": true,
	"pre":      true,
}

// frameContext carries the coordinate state accumulated while walking down
// through iframe and document boundaries: the running 2-D offset that
// translates local bounds to root-document coordinates, and the absolute
// client viewports of every frame-establishing ancestor.
type frameContext struct {
	offsetX float64
	offsetY float64
	frames  []geometry.Rect
}

// TreeBuilder correlates the three raw inputs by backend node ID and builds
// the enhanced tree for one page. A builder is owned by one page's extractor;
// it is not safe for concurrent use and must be Reset between passes so
// memoized nodes from a superseded pass cannot leak into the next one.
type TreeBuilder struct {
	logger    *slog.Logger
	tolerance float64

	samples map[cdp.BackendNodeID]*LayoutSample
	ax      map[cdp.BackendNodeID]*AXData
	built   map[cdp.BackendNodeID]*EnhancedNode
}

// NewTreeBuilder returns a builder using tolerance px of viewport slack.
// A tolerance <= 0 selects DefaultViewportTolerance.
func NewTreeBuilder(tolerance float64) *TreeBuilder {
	if tolerance <= 0 {
		tolerance = DefaultViewportTolerance
	}
	return &TreeBuilder{
		logger:    slog.Default().With("component", "tree-builder"),
		tolerance: tolerance,
		built:     make(map[cdp.BackendNodeID]*EnhancedNode),
	}
}

// Reset drops all state from the previous pass.
func (b *TreeBuilder) Reset() {
	b.samples = nil
	b.ax = nil
	b.built = make(map[cdp.BackendNodeID]*EnhancedNode)
}

// Build walks the raw tree top-down and produces the enhanced tree. Missing
// layout or accessibility data for any node is tolerated: such nodes come out
// invisible, non-scrollable, and role-less rather than failing the pass.
// Returns nil for a nil root.
func (b *TreeBuilder) Build(root *RawNode, samples map[cdp.BackendNodeID]*LayoutSample, ax map[cdp.BackendNodeID]*AXData) *EnhancedNode {
	if root == nil {
		return nil
	}
	b.samples = samples
	b.ax = ax

	fc := frameContext{}
	fc = b.enterDocument(root, fc)
	node := b.buildNode(root, nil, fc)
	b.logger.Debug("built enhanced tree", "nodes", len(b.built))
	return node
}

// enterDocument pushes the document's client viewport as a frame boundary and
// subtracts its scroll offsets from the running offset. The incoming offset
// must already point at the document's on-screen origin (0,0 for the root,
// the iframe's absolute origin for nested documents).
func (b *TreeBuilder) enterDocument(doc *RawNode, fc frameContext) frameContext {
	sample := b.sampleFor(doc.BackendID)
	if sample == nil {
		return fc
	}
	if sample.ClientRect != nil && !sample.ClientRect.Empty() {
		fc.frames = append(fc.frames, geometry.Rect{
			X:      fc.offsetX,
			Y:      fc.offsetY,
			Width:  sample.ClientRect.Width,
			Height: sample.ClientRect.Height,
		})
	}
	fc.offsetX -= sample.ScrollOffsetX
	fc.offsetY -= sample.ScrollOffsetY
	return fc
}

func (b *TreeBuilder) buildNode(raw *RawNode, parent *EnhancedNode, fc frameContext) *EnhancedNode {
	if raw == nil {
		return nil
	}

	// Nodes cross-referenced via shadow or frame linkage are built once and
	// shared by reference.
	if raw.BackendID != 0 {
		if existing, ok := b.built[raw.BackendID]; ok {
			return existing
		}
	}

	sample := b.sampleFor(raw.BackendID)
	node := &EnhancedNode{
		BackendID:      raw.BackendID,
		NodeType:       raw.NodeType,
		Tag:            raw.Tag,
		Value:          raw.Value,
		Attributes:     raw.Attributes,
		Layout:         sample,
		AX:             b.axFor(raw.BackendID),
		Parent:         parent,
		ShadowRootType: raw.ShadowRootType,
	}
	if raw.BackendID != 0 {
		b.built[raw.BackendID] = node
	}

	if sample != nil && sample.Bounds != nil {
		abs := sample.Bounds.Translate(fc.offsetX, fc.offsetY)
		node.AbsolutePosition = &abs
	}
	node.IsVisible = b.computeVisibility(node, fc)
	node.IsScrollable = b.computeScrollable(raw, sample)
	if node.IsScrollable {
		node.Scroll = scrollSummary(sample)
	}

	for _, child := range raw.Children {
		if c := b.buildNode(child, node, fc); c != nil {
			node.Children = append(node.Children, c)
		}
	}
	for _, shadow := range raw.ShadowRoots {
		if s := b.buildNode(shadow, node, fc); s != nil {
			node.ShadowRoots = append(node.ShadowRoots, s)
		}
	}

	if raw.ContentDocument != nil {
		node.ContentDocument = b.buildContentDocument(raw, node, fc)
	}

	return node
}

// buildContentDocument descends into an iframe/frame's document. The frame's
// absolute origin becomes the child coordinate origin, and the frame's client
// viewport joins the ancestor chain every descendant is clipped against.
func (b *TreeBuilder) buildContentDocument(frame *RawNode, node *EnhancedNode, fc frameContext) *EnhancedNode {
	childFC := frameContext{offsetX: fc.offsetX, offsetY: fc.offsetY, frames: fc.frames}

	sample := b.sampleFor(frame.BackendID)
	if sample != nil && sample.Bounds != nil {
		childFC.offsetX = fc.offsetX + sample.Bounds.X
		childFC.offsetY = fc.offsetY + sample.Bounds.Y
	}
	childFC = b.enterDocumentWithViewport(frame, sample, childFC)

	return b.buildNode(frame.ContentDocument, node, childFC)
}

// enterDocumentWithViewport is enterDocument for a nested document, where
// the clipping viewport comes from the frame element rather than the
// document node.
func (b *TreeBuilder) enterDocumentWithViewport(frame *RawNode, frameSample *LayoutSample, fc frameContext) frameContext {
	viewport := (*geometry.Rect)(nil)
	if frameSample != nil {
		if frameSample.ClientRect != nil && !frameSample.ClientRect.Empty() {
			viewport = frameSample.ClientRect
		} else if frameSample.Bounds != nil && !frameSample.Bounds.Empty() {
			viewport = frameSample.Bounds
		}
	}
	if viewport != nil {
		fc.frames = append(fc.frames, geometry.Rect{
			X:      fc.offsetX,
			Y:      fc.offsetY,
			Width:  viewport.Width,
			Height: viewport.Height,
		})
	}

	if docSample := b.sampleFor(frame.ContentDocument.BackendID); docSample != nil {
		fc.offsetX -= docSample.ScrollOffsetX
		fc.offsetY -= docSample.ScrollOffsetY
	}
	return fc
}

// computeVisibility applies the layered visibility rules: a layout sample
// with bounds must exist, local style must not hide the node, and the
// offset-adjusted bounds must intersect every ancestor frame's client
// viewport (expanded by the tolerance). Any failed ancestor intersection
// hides the node regardless of local style.
func (b *TreeBuilder) computeVisibility(node *EnhancedNode, fc frameContext) bool {
	sample := node.Layout
	if sample == nil || sample.Bounds == nil || node.AbsolutePosition == nil {
		return false
	}
	if sample.Style("display") == "none" {
		return false
	}
	if sample.Style("visibility") == "hidden" {
		return false
	}
	if op := sample.Style("opacity"); op != "" {
		if v, err := strconv.ParseFloat(op, 64); err == nil && v <= 0 {
			return false
		}
	}

	for _, frame := range fc.frames {
		if !node.AbsolutePosition.Intersects(frame.Expand(b.tolerance)) {
			return false
		}
	}
	return true
}

// computeScrollable decides whether the node actually scrolls: an explicit
// flag from the DOM tree, or scroll extent exceeding the client extent by
// more than a pixel combined with an overflow style that permits scroll.
// Nodes with no captured style fall back to a tag allow-list.
func (b *TreeBuilder) computeScrollable(raw *RawNode, sample *LayoutSample) bool {
	if raw.Scrollable {
		return true
	}
	if sample == nil || sample.ScrollRect == nil || sample.ClientRect == nil {
		return false
	}
	overflowX := sample.ScrollRect.Width > sample.ClientRect.Width+1
	overflowY := sample.ScrollRect.Height > sample.ClientRect.Height+1
	if !overflowX && !overflowY {
		return false
	}

	if len(sample.Styles) == 0 {
		return scrollableTagFallback[raw.Tag]
	}
	return overflowScrollValues[sample.Style("overflow")] ||
		overflowScrollValues[sample.Style("overflow-x")] ||
		overflowScrollValues[sample.Style("overflow-y")]
}

// scrollSummary derives pages-above/pages-below and the vertical scroll
// percentage from scroll position versus visible extent.
func scrollSummary(sample *LayoutSample) *ScrollInfo {
	if sample == nil || sample.ScrollRect == nil || sample.ClientRect == nil {
		return nil
	}
	visible := sample.ClientRect.Height
	total := sample.ScrollRect.Height
	if visible <= 0 || total <= visible {
		return &ScrollInfo{}
	}

	scrollTop := math.Max(0, sample.ScrollRect.Y)
	above := scrollTop
	below := math.Max(0, total-visible-scrollTop)

	info := &ScrollInfo{
		PagesAbove: round1(above / visible),
		PagesBelow: round1(below / visible),
	}
	if maxScroll := total - visible; maxScroll > 0 {
		info.VerticalPct = round1(100 * scrollTop / maxScroll)
	}
	return info
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func (b *TreeBuilder) sampleFor(id cdp.BackendNodeID) *LayoutSample {
	if id == 0 || b.samples == nil {
		return nil
	}
	return b.samples[id]
}

func (b *TreeBuilder) axFor(id cdp.BackendNodeID) *AXData {
	if id == 0 || b.ax == nil {
		return nil
	}
	return b.ax[id]
}

// XPath returns a positional XPath for diagnostics. Sibling indexes appear
// only when a node's tag is ambiguous among its element siblings, and the
// path stops at the nearest document or iframe boundary.
func (b *TreeBuilder) XPath(node *EnhancedNode) string {
	var segments []string

	for cur := node; cur != nil; cur = cur.Parent {
		if cur.NodeType == cdp.NodeTypeDocument || cur.IsFrame() {
			break
		}
		if !cur.IsElement() {
			continue
		}

		seg := cur.Tag
		if idx, ambiguous := siblingIndex(cur); ambiguous {
			seg = fmt.Sprintf("%s[%d]", seg, idx)
		}
		segments = append(segments, seg)
	}

	// Reverse into document order.
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return "/" + strings.Join(segments, "/")
}

// siblingIndex returns the 1-based index of node among same-tag element
// siblings and whether the tag appears more than once.
func siblingIndex(node *EnhancedNode) (int, bool) {
	if node.Parent == nil {
		return 1, false
	}
	idx, count := 0, 0
	for _, sib := range node.Parent.Children {
		if !sib.IsElement() || sib.Tag != node.Tag {
			continue
		}
		count++
		if sib == node {
			idx = count
		}
	}
	return idx, count > 1
}
