package geometry

// RectUnion accumulates a set of pairwise-disjoint rectangles. It answers
// "is this rectangle fully covered by what I've seen so far" and grows by
// inserting only the uncovered remainder of each new rectangle, so the set
// stays disjoint without any merging step.
//
// Both operations are O(k) subtractions against the current set, which is
// fine for per-page node counts (hundreds); this is not a general spatial
// index.
type RectUnion struct {
	rects []Rect
}

// NewRectUnion returns an empty accumulator.
func NewRectUnion() *RectUnion {
	return &RectUnion{}
}

// Len returns the number of disjoint rectangles held.
func (u *RectUnion) Len() int { return len(u.rects) }

// Covers reports whether r is entirely covered by the union. The candidate
// is repeatedly split against each member; if nothing remains it was covered.
func (u *RectUnion) Covers(r Rect) bool {
	if r.Empty() {
		return true
	}
	remaining := []Rect{r}
	for _, cov := range u.rects {
		var next []Rect
		for _, piece := range remaining {
			next = append(next, piece.subtract(cov)...)
		}
		remaining = next
		if len(remaining) == 0 {
			return true
		}
	}
	return false
}

// Insert adds r to the union. Only the parts of r not already covered are
// stored, keeping the set disjoint.
func (u *RectUnion) Insert(r Rect) {
	if r.Empty() {
		return
	}
	remaining := []Rect{r}
	for _, cov := range u.rects {
		var next []Rect
		for _, piece := range remaining {
			next = append(next, piece.subtract(cov)...)
		}
		remaining = next
		if len(remaining) == 0 {
			return
		}
	}
	u.rects = append(u.rects, remaining...)
}
