package dom

// Optimize prunes branches left empty by occlusion filtering. The simplifier
// ran before paint orders were consulted, so it could not know which visible
// nodes would end up fully covered; this bottom-up pass finishes the job.
// Returns nil when nothing under root is worth keeping.
func Optimize(root *SimplifiedNode) *SimplifiedNode {
	if root == nil {
		return nil
	}

	kept := root.Children[:0:0]
	for _, child := range root.Children {
		if c := Optimize(child); c != nil {
			kept = append(kept, c)
		}
	}
	root.Children = kept

	switch {
	case root.Node.IsVisible && !root.IgnoredByPaintOrder:
		return root
	case root.Node.IsScrollable:
		return root
	case root.Node.IsText():
		return root
	case root.Node.IsFileInput():
		return root
	case root.IsShadowRoot:
		// Boundary markers survive so shadow delimiters stay renderable.
		return root
	case len(root.Children) > 0:
		return root
	}
	return nil
}
