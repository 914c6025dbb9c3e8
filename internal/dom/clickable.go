package dom

import (
	"strings"

	"github.com/chromedp/cdproto/cdp"
)

// Heuristic reference tables. These are fixed classification data, never
// mutated at runtime.
var (
	interactiveTags = map[string]bool{
		"a": true, "button": true, "input": true, "select": true,
		"textarea": true, "option": true, "optgroup": true,
		"details": true, "summary": true, "label": true,
		"menu": true, "menuitem": true, "embed": true,
	}

	interactiveAttributes = map[string]bool{
		"onclick": true, "ng-click": true, "@click": true,
		"v-on:click": true, "href": true, "jsaction": true,
	}

	interactiveRoles = map[string]bool{
		"button": true, "link": true, "textbox": true, "searchbox": true,
		"checkbox": true, "radio": true, "combobox": true, "listbox": true,
		"option": true, "menuitem": true, "menuitemcheckbox": true,
		"menuitemradio": true, "tab": true, "switch": true, "slider": true,
		"spinbutton": true, "gridcell": true, "treeitem": true,
	}

	// searchIndicators flag elements whose class or id marks them as a
	// search affordance even when nothing else does.
	searchIndicators = []string{"search", "magnifier", "magnifying-glass", "lookup"}

	// iconAffordanceAttributes make a small square element count as a
	// clickable icon.
	iconAffordanceAttributes = []string{"class", "role", "onclick", "data-action", "aria-label"}
)

// Sizing thresholds for the frame and icon heuristics.
const (
	largeFrameMinSize = 100.0
	iconMinSize       = 10.0
	iconMaxSize       = 50.0
)

// Detector classifies nodes as interactive. The classification itself is
// stateless; the detector only memoizes subtree searches for the lifetime of
// one extraction pass.
type Detector struct {
	descendants map[cdp.BackendNodeID]bool
}

// NewDetector returns a detector for one extraction pass.
func NewDetector() *Detector {
	return &Detector{descendants: make(map[cdp.BackendNodeID]bool)}
}

// IsInteractive applies the classification rules in order, first match wins.
func (d *Detector) IsInteractive(node *EnhancedNode) bool {
	if node == nil || !node.IsElement() {
		return false
	}
	if node.Tag == "html" || node.Tag == "body" {
		return false
	}

	// Frames large enough to hold content are targets themselves.
	if node.IsFrame() {
		if r := node.AbsolutePosition; r != nil && (r.Width > largeFrameMinSize || r.Height > largeFrameMinSize) {
			return true
		}
	}

	classID := strings.ToLower(node.Attr("class") + " " + node.Attr("id"))
	for _, indicator := range searchIndicators {
		if strings.Contains(classID, indicator) {
			return true
		}
	}

	if verdict, decided := axVerdict(node.AX); decided {
		return verdict
	}

	if interactiveTags[node.Tag] {
		return true
	}

	for attr := range interactiveAttributes {
		if _, ok := node.Attributes[attr]; ok {
			return true
		}
	}
	if interactiveRoles[strings.ToLower(node.Attr("role"))] {
		return true
	}
	if node.Attr("contenteditable") == "true" {
		return true
	}

	if node.AX != nil && interactiveRoles[strings.ToLower(node.AX.Role)] {
		return true
	}

	if isIconSized(node) {
		for _, attr := range iconAffordanceAttributes {
			if node.Attr(attr) != "" {
				return true
			}
		}
	}

	if node.Layout != nil {
		if node.Layout.Cursor == "pointer" || node.Layout.Clickable {
			return true
		}
	}

	return false
}

// axVerdict evaluates the accessibility-property rules. disabled/hidden are a
// hard veto that short-circuits everything after it; the positive signals
// make the node interactive without consulting later rules.
func axVerdict(ax *AXData) (verdict, decided bool) {
	if ax == nil {
		return false, false
	}

	if ax.BoolProp("disabled") || ax.BoolProp("hidden") {
		return false, true
	}

	if ax.BoolProp("focusable") || ax.BoolProp("editable") || ax.BoolProp("settable") {
		return true, true
	}
	for _, name := range []string{"checked", "expanded", "pressed", "selected"} {
		if _, present := ax.Prop(name); present {
			return true, true
		}
	}
	for _, name := range []string{"required", "autocomplete"} {
		if v, present := ax.Prop(name); present && truthy(v) {
			return true, true
		}
	}

	return false, false
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "false" && t != "none"
	case float64:
		return t != 0
	}
	return false
}

// isIconSized reports whether the node is a small square in the icon size
// range on both axes.
func isIconSized(node *EnhancedNode) bool {
	r := node.AbsolutePosition
	if r == nil {
		return false
	}
	return r.Width >= iconMinSize && r.Width <= iconMaxSize &&
		r.Height >= iconMinSize && r.Height <= iconMaxSize
}

// HasInteractiveDescendants reports whether any node strictly below this one
// (including shadow subtrees and content documents) classifies as
// interactive. Results are memoized for the pass; a scrollable container is
// only exposed itself when this is false, so nested interactive content is
// not double-exposed.
func (d *Detector) HasInteractiveDescendants(node *EnhancedNode) bool {
	if node == nil {
		return false
	}
	if node.BackendID != 0 {
		if cached, ok := d.descendants[node.BackendID]; ok {
			return cached
		}
	}

	found := false
	for _, child := range childSubtrees(node) {
		if d.IsInteractive(child) || d.HasInteractiveDescendants(child) {
			found = true
			break
		}
	}

	if node.BackendID != 0 {
		d.descendants[node.BackendID] = found
	}
	return found
}

// childSubtrees returns every subtree hanging off a node: ordinary children,
// shadow roots, and a frame's content document.
func childSubtrees(node *EnhancedNode) []*EnhancedNode {
	out := make([]*EnhancedNode, 0, len(node.Children)+len(node.ShadowRoots)+1)
	out = append(out, node.Children...)
	out = append(out, node.ShadowRoots...)
	if node.ContentDocument != nil {
		out = append(out, node.ContentDocument)
	}
	return out
}

// InteractiveType derives a coarse category label for an interactive node:
// "input:<type>", "link", "button", "role:<role>", or "interactive".
func InteractiveType(node *EnhancedNode) string {
	switch node.Tag {
	case "input":
		inputType := node.Attr("type")
		if inputType == "" {
			inputType = "text"
		}
		return "input:" + inputType
	case "a":
		return "link"
	case "button":
		return "button"
	}
	if role := strings.ToLower(node.Attr("role")); interactiveRoles[role] {
		return "role:" + role
	}
	if node.AX != nil {
		if role := strings.ToLower(node.AX.Role); interactiveRoles[role] {
			return "role:" + role
		}
	}
	return "interactive"
}
