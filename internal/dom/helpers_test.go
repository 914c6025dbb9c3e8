package dom

import (
	"github.com/chromedp/cdproto/cdp"

	"github.com/neboloop/pagelens/internal/geometry"
)

// Fixture builders shared by the pipeline tests.

func rectPtr(x, y, w, h float64) *geometry.Rect {
	return &geometry.Rect{X: x, Y: y, Width: w, Height: h}
}

func elem(id int64, tag string, attrs map[string]string, children ...*RawNode) *RawNode {
	n := &RawNode{
		BackendID:  cdp.BackendNodeID(id),
		NodeType:   cdp.NodeTypeElement,
		Tag:        tag,
		Attributes: attrs,
		Children:   children,
	}
	for _, c := range children {
		c.Parent = n
	}
	return n
}

func textNode(id int64, value string) *RawNode {
	return &RawNode{
		BackendID: cdp.BackendNodeID(id),
		NodeType:  cdp.NodeTypeText,
		Value:     value,
	}
}

func docNode(id int64, children ...*RawNode) *RawNode {
	n := &RawNode{
		BackendID: cdp.BackendNodeID(id),
		NodeType:  cdp.NodeTypeDocument,
		Children:  children,
	}
	for _, c := range children {
		c.Parent = n
	}
	return n
}

func shadowRoot(id int64, shadowType string, children ...*RawNode) *RawNode {
	n := &RawNode{
		BackendID:      cdp.BackendNodeID(id),
		NodeType:       cdp.NodeTypeDocumentFragment,
		ShadowRootType: shadowType,
		Children:       children,
	}
	for _, c := range children {
		c.Parent = n
	}
	return n
}

// visibleStyles is the computed-style set of a plainly visible element.
func visibleStyles() map[string]string {
	return map[string]string{
		"display":    "block",
		"visibility": "visible",
		"opacity":    "1",
	}
}

func visibleSample(x, y, w, h float64) *LayoutSample {
	return &LayoutSample{
		Bounds: rectPtr(x, y, w, h),
		Styles: visibleStyles(),
	}
}

func paintedSample(x, y, w, h float64, paintOrder int, background string) *LayoutSample {
	s := visibleSample(x, y, w, h)
	s.PaintOrder = paintOrder
	s.HasPaint = true
	s.Styles["background-color"] = background
	return s
}

func scrollableSample(x, y, w, h, scrollH, scrollTop float64) *LayoutSample {
	s := visibleSample(x, y, w, h)
	s.ClientRect = rectPtr(x, y, w, h)
	s.ScrollRect = &geometry.Rect{X: 0, Y: scrollTop, Width: w, Height: scrollH}
	s.Styles["overflow-y"] = "auto"
	return s
}

type sampleMap = map[cdp.BackendNodeID]*LayoutSample

func samplesOf(pairs map[int64]*LayoutSample) sampleMap {
	out := make(sampleMap, len(pairs))
	for id, s := range pairs {
		out[cdp.BackendNodeID(id)] = s
	}
	return out
}

func axOf(pairs map[int64]*AXData) map[cdp.BackendNodeID]*AXData {
	out := make(map[cdp.BackendNodeID]*AXData, len(pairs))
	for id, a := range pairs {
		out[cdp.BackendNodeID(id)] = a
	}
	return out
}

// buildTree runs just the builder over a fixture.
func buildTree(root *RawNode, samples sampleMap, ax map[cdp.BackendNodeID]*AXData) *EnhancedNode {
	return NewTreeBuilder(0).Build(root, samples, ax)
}

// findByID walks an enhanced tree for a backend ID.
func findByID(node *EnhancedNode, id int64) *EnhancedNode {
	if node == nil {
		return nil
	}
	if node.BackendID == cdp.BackendNodeID(id) {
		return node
	}
	for _, sub := range childSubtrees(node) {
		if found := findByID(sub, id); found != nil {
			return found
		}
	}
	return nil
}

// findSimplified walks a simplified tree for a backend ID.
func findSimplified(sn *SimplifiedNode, id int64) *SimplifiedNode {
	if sn == nil {
		return nil
	}
	if sn.Node.BackendID == cdp.BackendNodeID(id) {
		return sn
	}
	for _, child := range sn.Children {
		if found := findSimplified(child, id); found != nil {
			return found
		}
	}
	return nil
}
