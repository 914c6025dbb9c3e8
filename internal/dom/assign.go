package dom

// AssignInteractiveIndexes makes the final interactivity decision for every
// surviving node and records each interactive node's backend ID in the
// selector map. Recursion continues into all children regardless of the
// current node's own marking, so interactive elements nested inside
// non-interactive wrappers are still found.
func AssignInteractiveIndexes(root *SimplifiedNode, detector *Detector, selectors SelectorMap) {
	if root == nil {
		return
	}

	if !root.ExcludedByParent && !root.IgnoredByPaintOrder {
		node := root.Node
		if node.IsScrollable {
			// A scrollable container is only exposed itself when nothing
			// inside it is interactive; otherwise its contents are the
			// targets and exposing both would duplicate them.
			if !detector.HasInteractiveDescendants(node) {
				root.IsInteractive = true
			}
		} else if detector.IsInteractive(node) {
			// File inputs are exposed even when hidden: pages routinely
			// trigger them from styled proxies.
			if node.IsVisible || node.IsFileInput() {
				root.IsInteractive = true
			}
		}

		if root.IsInteractive && node.BackendID != 0 {
			selectors[node.BackendID] = node
		}
	}

	for _, child := range root.Children {
		AssignInteractiveIndexes(child, detector, selectors)
	}
}
