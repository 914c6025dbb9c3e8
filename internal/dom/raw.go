package dom

import (
	"strings"

	"github.com/chromedp/cdproto/cdp"
)

// RawTreeFromCDP converts a piercing DOM.getDocument result into the
// pipeline's RawNode form: attributes flattened into a map, parent links set,
// shadow roots and iframe content documents threaded as separate subtrees.
func RawTreeFromCDP(node *cdp.Node) *RawNode {
	return rawFromCDP(node, nil)
}

func rawFromCDP(node *cdp.Node, parent *RawNode) *RawNode {
	if node == nil {
		return nil
	}

	raw := &RawNode{
		BackendID:      node.BackendNodeID,
		NodeType:       node.NodeType,
		Tag:            strings.ToLower(node.LocalName),
		Value:          node.NodeValue,
		Parent:         parent,
		Scrollable:     node.IsScrollable,
		ShadowRootType: string(node.ShadowRootType),
	}
	if raw.Tag == "" && node.NodeType == cdp.NodeTypeElement {
		raw.Tag = strings.ToLower(node.NodeName)
	}

	// Attributes arrive as a flat name/value pair list.
	if len(node.Attributes) > 1 {
		raw.Attributes = make(map[string]string, len(node.Attributes)/2)
		for i := 0; i+1 < len(node.Attributes); i += 2 {
			raw.Attributes[strings.ToLower(node.Attributes[i])] = node.Attributes[i+1]
		}
	}

	for _, child := range node.Children {
		if c := rawFromCDP(child, raw); c != nil {
			raw.Children = append(raw.Children, c)
		}
	}
	for _, shadow := range node.ShadowRoots {
		if s := rawFromCDP(shadow, raw); s != nil {
			raw.ShadowRoots = append(raw.ShadowRoots, s)
		}
	}
	if node.ContentDocument != nil {
		raw.ContentDocument = rawFromCDP(node.ContentDocument, raw)
	}

	return raw
}
