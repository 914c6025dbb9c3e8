package dom

import (
	"sort"
	"strconv"
	"strings"

	"github.com/neboloop/pagelens/internal/geometry"
)

// DefaultOcclusionOpacity is the minimum opacity at which an opaque-background
// node is assumed to actually hide what is painted below it.
const DefaultOcclusionOpacity = 0.8

// ApplyPaintOrderFilter marks nodes whose rectangles are fully covered by
// content painted above them. Groups are processed from the topmost paint
// order down, accumulating the covered region in a disjoint rectangle union.
// The mark applies per node, not per subtree: children of an ignored node
// are still candidates in their own right.
func ApplyPaintOrderFilter(root *SimplifiedNode, opacityThreshold float64) {
	if root == nil {
		return
	}
	if opacityThreshold <= 0 {
		opacityThreshold = DefaultOcclusionOpacity
	}

	groups := make(map[int][]*SimplifiedNode)
	collectPaintCandidates(root, groups)
	if len(groups) == 0 {
		return
	}

	orders := make([]int, 0, len(groups))
	for order := range groups {
		orders = append(orders, order)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(orders)))

	covered := geometry.NewRectUnion()
	for _, order := range orders {
		for _, sn := range groups[order] {
			rect := *sn.Node.AbsolutePosition

			if covered.Covers(rect) {
				sn.IgnoredByPaintOrder = true
			}

			// Only nodes that plausibly paint something opaque extend the
			// covered region; style-less nodes are skipped from union
			// membership without being marked themselves.
			if occludes(sn.Node, opacityThreshold) {
				covered.Insert(rect)
			}
		}
	}
}

// collectPaintCandidates gathers every node carrying both a paint order and
// bounds, grouped by paint order, in tree order.
func collectPaintCandidates(sn *SimplifiedNode, groups map[int][]*SimplifiedNode) {
	if sn == nil {
		return
	}
	if layout := sn.Node.Layout; layout != nil && layout.HasPaint && sn.Node.AbsolutePosition != nil && !sn.Node.AbsolutePosition.Empty() {
		groups[layout.PaintOrder] = append(groups[layout.PaintOrder], sn)
	}
	for _, child := range sn.Children {
		collectPaintCandidates(child, groups)
	}
}

// occludes reports whether the node's painted area can hide content painted
// below it: a non-transparent background at opacity at or above the
// threshold. Nodes with no captured style never occlude.
func occludes(node *EnhancedNode, opacityThreshold float64) bool {
	layout := node.Layout
	if layout == nil || len(layout.Styles) == 0 {
		return false
	}

	if !opaqueBackground(layout.Style("background-color")) {
		return false
	}

	opacity := 1.0
	if op := layout.Style("opacity"); op != "" {
		if v, err := strconv.ParseFloat(op, 64); err == nil {
			opacity = v
		}
	}
	return opacity >= opacityThreshold
}

// opaqueBackground reports whether a computed background-color value paints
// anything. Fully transparent colors (the computed default) do not.
func opaqueBackground(color string) bool {
	color = strings.TrimSpace(strings.ToLower(color))
	if color == "" || color == "transparent" {
		return false
	}
	// Computed rgba/hsla with a zero alpha channel.
	if strings.HasPrefix(color, "rgba(") || strings.HasPrefix(color, "hsla(") {
		inner := strings.TrimSuffix(color[strings.Index(color, "(")+1:], ")")
		parts := strings.Split(inner, ",")
		if len(parts) == 4 {
			if alpha, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64); err == nil && alpha == 0 {
				return false
			}
		}
	}
	return true
}
