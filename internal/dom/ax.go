package dom

import (
	"encoding/json"
	"strconv"

	"github.com/chromedp/cdproto/accessibility"
	"github.com/chromedp/cdproto/cdp"
)

// AXFromTree converts an Accessibility.getFullAXTree result into per-backend-ID
// accessibility data. Ignored nodes and nodes without a DOM counterpart are
// dropped; when several AX nodes share a backend ID the first wins.
func AXFromTree(nodes []*accessibility.Node) map[cdp.BackendNodeID]*AXData {
	data := make(map[cdp.BackendNodeID]*AXData, len(nodes))

	for _, node := range nodes {
		if node == nil || node.Ignored || node.BackendDOMNodeID == 0 {
			continue
		}
		if _, seen := data[node.BackendDOMNodeID]; seen {
			continue
		}

		ax := &AXData{
			Role:        axString(node.Role),
			Name:        axString(node.Name),
			Description: axString(node.Description),
			Value:       axString(node.Value),
		}
		if len(node.Properties) > 0 {
			ax.Properties = make(map[string]any, len(node.Properties))
			for _, prop := range node.Properties {
				if prop == nil || prop.Value == nil {
					continue
				}
				ax.Properties[string(prop.Name)] = axAny(prop.Value)
			}
		}

		data[node.BackendDOMNodeID] = ax
	}

	return data
}

// axString decodes an accessibility value's JSON payload as a string.
// Numeric values (sliders, spinbuttons) are formatted; anything else reads
// as "".
func axString(v *accessibility.Value) string {
	if v == nil || len(v.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v.Value, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(v.Value, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// axAny decodes an accessibility value's JSON payload into its natural Go
// type (bool, string, or float64). Undecodable values read as nil.
func axAny(v *accessibility.Value) any {
	if v == nil || len(v.Value) == 0 {
		return nil
	}
	var out any
	if err := json.Unmarshal(v.Value, &out); err != nil {
		return nil
	}
	return out
}
