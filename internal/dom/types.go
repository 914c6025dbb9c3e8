// Package dom turns raw Chrome DevTools Protocol page data - a DOM tree, a
// layout snapshot, and an accessibility tree, all keyed by backend node ID -
// into a compact textual tree for LLM consumption plus a handle->element map
// used to target subsequent input actions.
package dom

import (
	"github.com/chromedp/cdproto/cdp"

	"github.com/neboloop/pagelens/internal/geometry"
)

// RawNode is one node of the raw DOM tree as reported by the protocol
// client. It is input only; the pipeline never mutates it.
type RawNode struct {
	BackendID  cdp.BackendNodeID
	NodeType   cdp.NodeType
	Tag        string // lowercase local name, empty for non-elements
	Value      string // node value, set for text nodes
	Attributes map[string]string

	Parent          *RawNode
	Children        []*RawNode
	ShadowRoots     []*RawNode
	ContentDocument *RawNode // loaded document of an iframe/frame, nil otherwise
	ShadowRootType  string   // "open"/"closed"/"user-agent" when this node is a shadow root
	Scrollable      bool     // explicit scrollable flag from the DOM tree
}

// IsElement reports whether the node is an element node.
func (n *RawNode) IsElement() bool { return n.NodeType == cdp.NodeTypeElement }

// IsText reports whether the node is a text node.
func (n *RawNode) IsText() bool { return n.NodeType == cdp.NodeTypeText }

// LayoutSample is the per-node slice of the layout snapshot, normalized to
// CSS pixels. Any field may be absent for a given node.
type LayoutSample struct {
	Clickable  bool
	Cursor     string
	PaintOrder int
	HasPaint   bool // PaintOrder is only meaningful when true

	Bounds     *geometry.Rect
	ClientRect *geometry.Rect
	ScrollRect *geometry.Rect

	// Styles holds the computed-style subset requested at capture time,
	// keyed by property name.
	Styles map[string]string

	// Document-root scroll offsets; only set on document nodes.
	ScrollOffsetX float64
	ScrollOffsetY float64
	IsDocument    bool
}

// Style returns a computed style value, or "" when the property was not
// captured for this node.
func (s *LayoutSample) Style(name string) string {
	if s == nil || s.Styles == nil {
		return ""
	}
	return s.Styles[name]
}

// AXData is the accessibility-tree slice for one backend node.
type AXData struct {
	Role        string
	Name        string
	Description string
	Value       string
	// Properties holds named AX properties (focusable, disabled, checked,
	// expanded, ...). Values are bool or string depending on the property.
	Properties map[string]any
}

// Prop returns the named AX property and whether it was present.
func (a *AXData) Prop(name string) (any, bool) {
	if a == nil || a.Properties == nil {
		return nil, false
	}
	v, ok := a.Properties[name]
	return v, ok
}

// BoolProp returns the named AX property as a bool; absent or non-bool
// properties read as false.
func (a *AXData) BoolProp(name string) bool {
	v, ok := a.Prop(name)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// ScrollInfo summarizes how far a scrollable container is scrolled.
type ScrollInfo struct {
	PagesAbove  float64 // content above the visible extent, in viewport heights
	PagesBelow  float64 // content below, in viewport heights
	VerticalPct float64 // scroll position, 0-100
}

// EnhancedNode is the merge of one backend node's DOM, layout, and
// accessibility data plus geometry computed across the ancestor frame and
// scroll chain. Nodes are built once per backend ID per extraction pass and
// shared by reference; they are immutable once built.
type EnhancedNode struct {
	BackendID  cdp.BackendNodeID
	NodeType   cdp.NodeType
	Tag        string
	Value      string
	Attributes map[string]string

	Layout *LayoutSample // nil when the snapshot had no sample for this node
	AX     *AXData       // nil when the AX tree had no entry for this node

	// AbsolutePosition is the node's bounds translated through every
	// ancestor iframe origin and document scroll offset, in root-document
	// CSS pixels. Nil when the node has no layout bounds.
	AbsolutePosition *geometry.Rect

	IsVisible    bool
	IsScrollable bool
	Scroll       *ScrollInfo

	Parent          *EnhancedNode
	Children        []*EnhancedNode
	ShadowRoots     []*EnhancedNode
	ContentDocument *EnhancedNode
	ShadowRootType  string
}

// IsElement reports whether the node is an element node.
func (n *EnhancedNode) IsElement() bool { return n.NodeType == cdp.NodeTypeElement }

// IsText reports whether the node is a text node.
func (n *EnhancedNode) IsText() bool { return n.NodeType == cdp.NodeTypeText }

// IsFrame reports whether the node is an iframe or frame element.
func (n *EnhancedNode) IsFrame() bool {
	return n.Tag == "iframe" || n.Tag == "frame"
}

// IsFileInput reports whether the node is an <input type="file">.
func (n *EnhancedNode) IsFileInput() bool {
	return n.Tag == "input" && n.Attributes["type"] == "file"
}

// Attr returns an attribute value, or "" when absent.
func (n *EnhancedNode) Attr(name string) string {
	if n.Attributes == nil {
		return ""
	}
	return n.Attributes[name]
}

// SimplifiedNode wraps an EnhancedNode with the mutable flags the pruning
// and serialization passes need. Simplified trees live for one pipeline run.
type SimplifiedNode struct {
	Node     *EnhancedNode
	Children []*SimplifiedNode

	ShouldDisplay       bool
	IsInteractive       bool
	IgnoredByPaintOrder bool
	ExcludedByParent    bool
	IsShadowHost        bool
	IsShadowRoot        bool
}

// SelectorMap maps a handle (backend node ID) to the element it addressed at
// extraction time. Handles are only valid for the extraction that produced
// them; the map is rebuilt from scratch on every pass.
type SelectorMap map[cdp.BackendNodeID]*EnhancedNode
