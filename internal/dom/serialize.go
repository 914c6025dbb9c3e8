package dom

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultIncludeAttributes is the attribute projection used when the caller
// does not configure one. Order matters: attributes are emitted in this order.
var DefaultIncludeAttributes = []string{
	"title", "type", "checked", "name", "role", "value", "placeholder",
	"format", "alt", "aria-label", "aria-expanded", "aria-checked",
	"data-state", "href",
}

// inputFormatHints maps input types to the value format the control expects.
// The hint surfaces as a synthetic "format" attribute and, when the input has
// no placeholder of its own, as its placeholder.
var inputFormatHints = map[string]string{
	"date":           "MM/DD/YYYY",
	"datetime-local": "MM/DD/YYYY HH:MM",
	"month":          "YYYY-MM",
	"week":           "YYYY-W##",
	"time":           "HH:MM",
	"email":          "user@example.com",
	"tel":            "+1 555 000 0000",
	"url":            "https://example.com",
	"color":          "#RRGGBB",
}

// attributeValueCap bounds projected attribute values and rendered text.
const attributeValueCap = 100

// Serializer renders a filtered tree to its text form. The grammar:
//
//	[12]<button type="submit"/>        interactive element with handle 12
//	|SCROLL|<div/> (0.0 pages above, 2.1 pages below, 0% scrolled)
//	|SCROLL[7]|<div/>                  scrollable and itself the target
//	|SHADOW(open)|<my-widget/>         shadow host
//	|IFRAME|<iframe/> / |FRAME|<frame/>
//	Open Shadow ... Shadow End         shadow subtree delimiters
//	bare text lines                    visible text nodes
//
// Indentation is one tab per level; only interactive, scrollable, or
// frame-boundary nodes advance the depth for their children, so purely
// structural wrappers are flattened.
type Serializer struct {
	includeAttributes []string
}

// NewSerializer returns a serializer projecting the given attributes, or the
// default list when attrs is empty.
func NewSerializer(attrs []string) *Serializer {
	if len(attrs) == 0 {
		attrs = DefaultIncludeAttributes
	}
	return &Serializer{includeAttributes: attrs}
}

// Serialize renders the tree. A nil root yields "".
func (s *Serializer) Serialize(root *SimplifiedNode) string {
	if root == nil {
		return ""
	}
	var b strings.Builder
	s.writeNode(&b, root, 0)
	return strings.TrimRight(b.String(), "\n")
}

func (s *Serializer) writeNode(b *strings.Builder, sn *SimplifiedNode, depth int) {
	node := sn.Node

	if sn.IsShadowRoot {
		s.writeShadowRoot(b, sn, depth)
		return
	}

	renders := sn.ShouldDisplay && !sn.ExcludedByParent && !sn.IgnoredByPaintOrder

	if renders && node.IsText() {
		b.WriteString(strings.Repeat("\t", depth))
		b.WriteString(capValue(strings.TrimSpace(node.Value)))
		b.WriteByte('\n')
		return
	}

	childDepth := depth
	if renders && node.IsElement() {
		b.WriteString(strings.Repeat("\t", depth))
		b.WriteString(s.elementLine(sn))
		b.WriteByte('\n')

		if node.Tag == "svg" {
			// SVG internals carry nothing for an automation caller.
			return
		}
		if sn.IsInteractive || node.IsScrollable || node.IsFrame() {
			childDepth = depth + 1
		}
	}

	for _, child := range sn.Children {
		s.writeNode(b, child, childDepth)
	}
}

// writeShadowRoot renders the shadow delimiters: an opening line, children
// one indent deeper, and a closing line only when the subtree produced
// output.
func (s *Serializer) writeShadowRoot(b *strings.Builder, sn *SimplifiedNode, depth int) {
	label := "Open Shadow"
	if sn.Node.ShadowRootType == "closed" {
		label = "Closed Shadow"
	}
	b.WriteString(strings.Repeat("\t", depth))
	b.WriteString(label)
	b.WriteByte('\n')

	var inner strings.Builder
	for _, child := range sn.Children {
		s.writeNode(&inner, child, depth+1)
	}
	if inner.Len() > 0 {
		b.WriteString(inner.String())
		b.WriteString(strings.Repeat("\t", depth))
		b.WriteString("Shadow End")
		b.WriteByte('\n')
	}
}

// elementLine renders one element's line: markers, tag, projected
// attributes, and the scroll summary for scroll boundaries.
func (s *Serializer) elementLine(sn *SimplifiedNode) string {
	node := sn.Node
	var line strings.Builder

	switch {
	case node.IsScrollable && sn.IsInteractive:
		fmt.Fprintf(&line, "|SCROLL[%d]|", node.BackendID)
	case node.IsScrollable:
		line.WriteString("|SCROLL|")
	case sn.IsInteractive:
		fmt.Fprintf(&line, "[%d]", node.BackendID)
	}
	if sn.IsShadowHost {
		shadowType := "open"
		if len(node.ShadowRoots) > 0 && node.ShadowRoots[0].ShadowRootType == "closed" {
			shadowType = "closed"
		}
		fmt.Fprintf(&line, "|SHADOW(%s)|", shadowType)
	}
	switch node.Tag {
	case "iframe":
		line.WriteString("|IFRAME|")
	case "frame":
		line.WriteString("|FRAME|")
	}

	line.WriteByte('<')
	line.WriteString(node.Tag)
	if attrs := s.projectAttributes(node); attrs != "" {
		line.WriteByte(' ')
		line.WriteString(attrs)
	}
	line.WriteString("/>")

	// Only the outermost scrollable ancestor reports scroll state; a
	// scrollable nested inside another scrollable would just repeat it.
	if node.IsScrollable && node.Scroll != nil && isScrollBoundary(node) {
		info := node.Scroll
		fmt.Fprintf(&line, " (%.1f pages above, %.1f pages below, %.0f%% scrolled)",
			info.PagesAbove, info.PagesBelow, info.VerticalPct)
	}

	return line.String()
}

// isScrollBoundary reports whether no ancestor of the node is itself
// scrollable.
func isScrollBoundary(node *EnhancedNode) bool {
	for cur := node.Parent; cur != nil; cur = cur.Parent {
		if cur.IsScrollable {
			return false
		}
	}
	return true
}

// projectAttributes builds the attribute string: allow-listed attributes in
// allow-list order, merged with synthetic input hints and accessibility
// data, each value trimmed and capped.
func (s *Serializer) projectAttributes(node *EnhancedNode) string {
	candidates := make(map[string]string, len(node.Attributes)+3)
	for name, value := range node.Attributes {
		candidates[name] = value
	}

	if node.Tag == "input" {
		if hint, ok := inputFormatHints[node.Attr("type")]; ok {
			candidates["format"] = hint
			if candidates["placeholder"] == "" {
				candidates["placeholder"] = hint
			}
		}
	}

	if ax := node.AX; ax != nil {
		// AX properties matching the allow-list fill attribute gaps;
		// booleans are stringified.
		for _, name := range s.includeAttributes {
			if candidates[name] != "" {
				continue
			}
			if v, ok := ax.Prop(name); ok {
				candidates[name] = stringifyProp(v)
			}
		}
		// Form controls surface their live accessibility value.
		switch node.Tag {
		case "input", "textarea", "select":
			if ax.Value != "" {
				candidates["value"] = ax.Value
			} else if vt, ok := ax.Prop("valuetext"); ok {
				candidates["value"] = stringifyProp(vt)
			}
		}
	}

	var parts []string
	emitted := make(map[string]bool, len(s.includeAttributes))
	for _, name := range s.includeAttributes {
		value, ok := candidates[name]
		if !ok {
			continue
		}
		value = capValue(strings.TrimSpace(value))
		parts = append(parts, fmt.Sprintf("%s=%q", name, value))
		emitted[value] = true
	}

	// A name the attributes didn't already convey is still worth showing.
	if ax := node.AX; ax != nil && ax.Name != "" && !emitted[ax.Name] {
		parts = append(parts, fmt.Sprintf("ax_name=%q", capValue(strings.TrimSpace(ax.Name))))
	}

	return strings.Join(parts, " ")
}

func stringifyProp(v any) string {
	switch t := v.(type) {
	case bool:
		return strconv.FormatBool(t)
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}

// capValue truncates long values with an ellipsis so one attribute cannot
// flood the rendered tree. The cap counts runes, not bytes, so multi-byte
// text is never cut mid-rune.
func capValue(v string) string {
	if utf8.RuneCountInString(v) <= attributeValueCap {
		return v
	}
	runes := []rune(v)
	return string(runes[:attributeValueCap]) + "..."
}
