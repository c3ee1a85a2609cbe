package spatial

import "testing"

func TestFromCircleClamps(t *testing.T) {
	tests := []struct {
		name      string
		cx, cy, r float32
		want      BBox
	}{
		{"interior", 0.5, 0.5, 0.1, BBox{0.4, 0.4, 0.6, 0.6}},
		{"clamped left top", 0.05, 0.05, 0.2, BBox{0, 0, 0.25, 0.25}},
		{"clamped right bottom", 0.95, 0.95, 0.2, BBox{0.75, 0.75, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromCircle(tt.cx, tt.cy, tt.r)
			if !approxBox(got, tt.want) {
				t.Errorf("FromCircle() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFromRect(t *testing.T) {
	got := FromRect(0.5, 0.5, 0.2, 0.4)
	want := BBox{0.4, 0.3, 0.6, 0.7}
	if !approxBox(got, want) {
		t.Errorf("FromRect() = %+v, want %+v", got, want)
	}
}

func TestGridQueryInsideBox(t *testing.T) {
	g := NewGrid(640, 480, 64)
	box := FromCircle(0.5, 0.5, 0.05)
	g.Insert(7, box)

	// Any point inside the box must yield the inserted index.
	points := [][2]float32{{0.5, 0.5}, {0.46, 0.5}, {0.5, 0.54}}
	for _, p := range points {
		found := false
		for _, idx := range g.Query(p[0], p[1]) {
			if idx == 7 {
				found = true
			}
		}
		if !found {
			t.Errorf("Query(%v, %v) missing index 7", p[0], p[1])
		}
	}
}

func TestGridQueryOutside(t *testing.T) {
	g := NewGrid(640, 480, 64)
	g.Insert(3, FromCircle(0.1, 0.1, 0.02))

	if got := g.Query(0.9, 0.9); len(got) != 0 {
		t.Errorf("Query(0.9, 0.9) = %v, want empty", got)
	}
}

func TestGridQueryIsSuperset(t *testing.T) {
	// A box spanning multiple tiles shows up in each of them, including
	// tiles where the shape itself does not reach the query point.
	g := NewGrid(640, 480, 64)
	g.Insert(0, BBox{MinX: 0, MinY: 0, MaxX: 0.5, MaxY: 0.5})

	if got := g.Query(0.45, 0.05); len(got) != 1 || got[0] != 0 {
		t.Errorf("Query(0.45, 0.05) = %v, want [0]", got)
	}
}

func TestGridClear(t *testing.T) {
	g := NewGrid(640, 480, 64)
	g.Insert(1, FromCircle(0.5, 0.5, 0.1))
	if g.Len() == 0 {
		t.Fatal("expected occupied tiles before Clear")
	}
	g.Clear()
	if g.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", g.Len())
	}
	if got := g.Query(0.5, 0.5); len(got) != 0 {
		t.Errorf("Query after Clear = %v, want empty", got)
	}
}

func TestGridMultipleIndices(t *testing.T) {
	g := NewGrid(640, 480, 64)
	g.Insert(1, FromCircle(0.5, 0.5, 0.05))
	g.Insert(2, FromCircle(0.52, 0.5, 0.05))

	got := g.Query(0.5, 0.5)
	if len(got) < 2 {
		t.Errorf("Query() = %v, want both indices", got)
	}
}

func approxBox(a, b BBox) bool {
	const eps = 1e-5
	return approx(a.MinX, b.MinX, eps) && approx(a.MinY, b.MinY, eps) &&
		approx(a.MaxX, b.MaxX, eps) && approx(a.MaxY, b.MaxY, eps)
}

func approx(a, b, eps float32) bool {
	d := a - b
	return d <= eps && d >= -eps
}
