// Package geometry provides the 2-D rectangle arithmetic used by the page
// perception pipeline: a plain rectangle value type and a disjoint-rectangle
// accumulator for paint-order occlusion checks.
package geometry

// Rect is an axis-aligned rectangle in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Area returns the rectangle's area. Empty rectangles have area 0.
func (r Rect) Area() float64 {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// CenterX returns the x coordinate of the rectangle's center.
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the y coordinate of the rectangle's center.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Translate returns a copy shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Expand returns a copy grown by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{X: r.X - pad, Y: r.Y - pad, Width: r.Width + 2*pad, Height: r.Height + 2*pad}
}

// Intersects reports whether r and other share any area.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.Right() && other.X < r.Right() &&
		r.Y < other.Bottom() && other.Y < r.Bottom()
}

// Intersect returns the overlapping region of r and other. The zero Rect is
// returned when they do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x1 := max(r.X, other.X)
	y1 := max(r.Y, other.Y)
	x2 := min(r.Right(), other.Right())
	y2 := min(r.Bottom(), other.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Contains reports whether other lies entirely inside r.
func (r Rect) Contains(other Rect) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.Right() <= r.Right() && other.Bottom() <= r.Bottom()
}

// subtract returns the parts of r not covered by other: up to four strips
// (above, below, left clip, right clip). Returns r unchanged when the two do
// not overlap.
func (r Rect) subtract(other Rect) []Rect {
	if !r.Intersects(other) {
		return []Rect{r}
	}

	var out []Rect

	// Strip above the overlap.
	if other.Y > r.Y {
		out = append(out, Rect{X: r.X, Y: r.Y, Width: r.Width, Height: other.Y - r.Y})
	}
	// Strip below the overlap.
	if other.Bottom() < r.Bottom() {
		out = append(out, Rect{X: r.X, Y: other.Bottom(), Width: r.Width, Height: r.Bottom() - other.Bottom()})
	}

	// Left and right strips are clipped to the overlap's vertical extent so
	// the pieces stay disjoint.
	clipTop := max(r.Y, other.Y)
	clipBottom := min(r.Bottom(), other.Bottom())
	if clipBottom > clipTop {
		if other.X > r.X {
			out = append(out, Rect{X: r.X, Y: clipTop, Width: other.X - r.X, Height: clipBottom - clipTop})
		}
		if other.Right() < r.Right() {
			out = append(out, Rect{X: other.Right(), Y: clipTop, Width: r.Right() - other.Right(), Height: clipBottom - clipTop})
		}
	}

	return out
}
