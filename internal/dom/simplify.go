package dom

import (
	"strings"

	"github.com/chromedp/cdproto/cdp"
)

// droppedTags are never worth representing, with their whole subtree.
var droppedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"meta": true, "link": true, "head": true, "title": true, "base": true,
}

// svgInternalTags are SVG drawing primitives; the serializer renders an
// <svg> root as a single line, so its internals carry no information.
var svgInternalTags = map[string]bool{
	"path": true, "rect": true, "circle": true, "ellipse": true,
	"line": true, "polyline": true, "polygon": true, "g": true,
	"defs": true, "use": true, "symbol": true, "stop": true,
	"lineargradient": true, "radialgradient": true, "clippath": true,
	"mask": true, "pattern": true, "filter": true, "tspan": true,
	"marker": true,
}

// Simplify prunes the enhanced tree down to the nodes worth representing.
// It runs before occlusion is known, so it keeps everything that might still
// matter; the optimizer does the post-occlusion cleanup.
func Simplify(root *EnhancedNode) *SimplifiedNode {
	results := simplifyNode(root)
	switch len(results) {
	case 0:
		return nil
	case 1:
		return results[0]
	}
	// A document that splices to several children keeps a silent wrapper so
	// the tree stays single-rooted.
	return &SimplifiedNode{Node: root, Children: results}
}

// simplifyNode returns the simplified representation of one enhanced node:
// zero nodes (pruned), one node, or - for transparent documents - the
// spliced-in results of its children.
func simplifyNode(node *EnhancedNode) []*SimplifiedNode {
	if node == nil {
		return nil
	}

	switch node.NodeType {
	case cdp.NodeTypeDocument:
		// Documents are transparent: children take their place.
		var out []*SimplifiedNode
		for _, child := range node.Children {
			out = append(out, simplifyNode(child)...)
		}
		return out

	case cdp.NodeTypeDocumentFragment:
		// Shadow roots stay as boundary markers even when empty, so the
		// serializer can render the shadow delimiters.
		simplified := &SimplifiedNode{Node: node, IsShadowRoot: true}
		for _, child := range node.Children {
			simplified.Children = append(simplified.Children, simplifyNode(child)...)
		}
		return []*SimplifiedNode{simplified}

	case cdp.NodeTypeText:
		if node.IsVisible && len(strings.TrimSpace(node.Value)) > 1 {
			return []*SimplifiedNode{{Node: node, ShouldDisplay: true}}
		}
		return nil

	case cdp.NodeTypeElement:
		return simplifyElement(node)
	}

	return nil
}

func simplifyElement(node *EnhancedNode) []*SimplifiedNode {
	if droppedTags[node.Tag] || svgInternalTags[node.Tag] {
		return nil
	}

	simplified := &SimplifiedNode{Node: node, IsShadowHost: len(node.ShadowRoots) > 0}

	if node.IsFrame() && node.ContentDocument != nil {
		// A loaded frame is flattened: the content document's children
		// appear directly under the frame element. The builder already
		// recorded the frame boundary in every descendant's geometry.
		for _, child := range node.ContentDocument.Children {
			simplified.Children = append(simplified.Children, simplifyNode(child)...)
		}
	} else {
		for _, child := range node.Children {
			simplified.Children = append(simplified.Children, simplifyNode(child)...)
		}
	}
	for _, shadow := range node.ShadowRoots {
		simplified.Children = append(simplified.Children, simplifyNode(shadow)...)
	}

	keep := node.IsVisible || node.IsScrollable || simplified.IsShadowHost || node.IsFileInput()
	if keep {
		simplified.ShouldDisplay = true
	} else if len(simplified.Children) == 0 {
		return nil
	}

	// A select renders as one control; its option subtree is folded into the
	// select's own accessibility value instead of being listed.
	if node.Tag == "select" {
		markExcluded(simplified.Children)
	}

	return []*SimplifiedNode{simplified}
}

func markExcluded(nodes []*SimplifiedNode) {
	for _, n := range nodes {
		n.ExcludedByParent = true
		markExcluded(n.Children)
	}
}
