package geometry

import "testing"

func TestRectCenter(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 60, Height: 24}
	if r.CenterX() != 40 || r.CenterY() != 22 {
		t.Errorf("center = (%v, %v), want (40, 22)", r.CenterX(), r.CenterY())
	}
}

func TestRectIntersects(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"identical", Rect{0, 0, 100, 100}, true},
		{"overlapping corner", Rect{50, 50, 100, 100}, true},
		{"contained", Rect{10, 10, 20, 20}, true},
		{"touching edge", Rect{100, 0, 50, 50}, false},
		{"disjoint", Rect{200, 200, 10, 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects(%+v) = %v, want %v", tt.b, got, tt.want)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	outer := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	if !outer.Contains(Rect{10, 10, 50, 50}) {
		t.Error("expected outer to contain inner rect")
	}
	if !outer.Contains(outer) {
		t.Error("a rect should contain itself")
	}
	if outer.Contains(Rect{50, 50, 100, 100}) {
		t.Error("partially-overlapping rect should not be contained")
	}
}

func TestRectIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 50, Y: 50, Width: 100, Height: 100}

	got := a.Intersect(b)
	want := Rect{X: 50, Y: 50, Width: 50, Height: 50}
	if got != want {
		t.Errorf("Intersect = %+v, want %+v", got, want)
	}

	if zero := a.Intersect(Rect{X: 300, Y: 300, Width: 10, Height: 10}); !zero.Empty() {
		t.Errorf("disjoint Intersect should be empty, got %+v", zero)
	}
}

func TestRectSubtract(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	// Subtracting a centered hole leaves four strips.
	pieces := r.subtract(Rect{X: 25, Y: 25, Width: 50, Height: 50})
	if len(pieces) != 4 {
		t.Fatalf("expected 4 pieces, got %d: %+v", len(pieces), pieces)
	}
	var area float64
	for i, p := range pieces {
		area += p.Area()
		for j, q := range pieces {
			if i != j && p.Intersects(q) {
				t.Errorf("pieces %d and %d overlap: %+v / %+v", i, j, p, q)
			}
		}
	}
	if area != 100*100-50*50 {
		t.Errorf("piece area = %v, want %v", area, 100*100-50*50)
	}

	// Full coverage leaves nothing.
	if pieces := r.subtract(r); len(pieces) != 0 {
		t.Errorf("subtracting self should leave nothing, got %+v", pieces)
	}

	// No overlap leaves the original.
	pieces = r.subtract(Rect{X: 500, Y: 500, Width: 10, Height: 10})
	if len(pieces) != 1 || pieces[0] != r {
		t.Errorf("disjoint subtract should return original, got %+v", pieces)
	}
}

func TestRectUnionCovers(t *testing.T) {
	u := NewRectUnion()
	target := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	if u.Covers(target) {
		t.Fatal("empty union should cover nothing")
	}

	u.Insert(Rect{X: 0, Y: 0, Width: 100, Height: 100})
	if !u.Covers(target) {
		t.Error("identical rect should be covered")
	}
	if !u.Covers(Rect{X: 10, Y: 10, Width: 20, Height: 20}) {
		t.Error("contained rect should be covered")
	}
	if u.Covers(Rect{X: 50, Y: 50, Width: 100, Height: 100}) {
		t.Error("partially-overlapping rect should not be covered")
	}
}

func TestRectUnionCoverageFromPieces(t *testing.T) {
	// Two halves inserted separately must cover the whole.
	u := NewRectUnion()
	u.Insert(Rect{X: 0, Y: 0, Width: 50, Height: 100})
	u.Insert(Rect{X: 50, Y: 0, Width: 50, Height: 100})

	if !u.Covers(Rect{X: 0, Y: 0, Width: 100, Height: 100}) {
		t.Error("two adjacent halves should cover the full rect")
	}
	if !u.Covers(Rect{X: 25, Y: 25, Width: 50, Height: 50}) {
		t.Error("rect spanning the seam should be covered")
	}
}

func TestRectUnionStaysDisjoint(t *testing.T) {
	u := NewRectUnion()
	u.Insert(Rect{X: 0, Y: 0, Width: 100, Height: 100})
	u.Insert(Rect{X: 50, Y: 50, Width: 100, Height: 100})
	u.Insert(Rect{X: 0, Y: 0, Width: 100, Height: 100}) // fully covered, no-op

	for i, a := range u.rects {
		for j, b := range u.rects {
			if i != j && a.Intersects(b) {
				t.Errorf("union members %d and %d overlap: %+v / %+v", i, j, a, b)
			}
		}
	}
}

func TestRectUnionIgnoresEmpty(t *testing.T) {
	u := NewRectUnion()
	u.Insert(Rect{})
	if u.Len() != 0 {
		t.Errorf("empty rect should not be stored, len = %d", u.Len())
	}
	if !u.Covers(Rect{}) {
		t.Error("empty rect is trivially covered")
	}
}
