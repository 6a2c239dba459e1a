package geom

import (
	"math"
	"testing"
)

func TestPointDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"same point", Point{1, 1}, Point{1, 1}, 0},
		{"horizontal", Point{0, 0}, Point{3, 0}, 3},
		{"vertical", Point{0, 10}, Point{0, 4}, 6},
		{"diagonal", Point{0, 0}, Point{3, 4}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Distance(tt.b); got != tt.want {
				t.Errorf("Distance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointAddSub(t *testing.T) {
	p := Point{X: 10, Y: 20}
	off := Point{X: -3, Y: 5}

	sum := p.Add(off)
	if sum != (Point{X: 7, Y: 25}) {
		t.Errorf("Add() = %+v", sum)
	}
	if got := sum.Sub(p); got != off {
		t.Errorf("Sub() = %+v, want %+v", got, off)
	}
}

func TestRectCenter(t *testing.T) {
	r := NewRect(10, 20, 30, 40)
	want := Point{X: 25, Y: 40}
	if got := r.Center(); got != want {
		t.Errorf("Center() = %+v, want %+v", got, want)
	}
}

func TestRectAround(t *testing.T) {
	r := RectAround(Point{X: 50, Y: 60}, 20, 10)
	if r.X != 40 || r.Y != 55 || r.Width != 20 || r.Height != 10 {
		t.Errorf("RectAround() = %+v", r)
	}
	if got := r.Center(); got != (Point{X: 50, Y: 60}) {
		t.Errorf("center of RectAround = %+v", got)
	}
	if got := r.TopLeft(); got != (Point{X: 40, Y: 55}) {
		t.Errorf("TopLeft() = %+v", got)
	}
}

func TestRectContainsRect(t *testing.T) {
	page := NewRect(0, 0, 600, 800)

	t.Run("inside", func(t *testing.T) {
		if !page.ContainsRect(NewRect(10, 10, 100, 100)) {
			t.Error("expected rect to be contained")
		}
	})
	t.Run("partially outside", func(t *testing.T) {
		if page.ContainsRect(NewRect(550, 10, 100, 100)) {
			t.Error("expected rect not to be contained")
		}
	})
	t.Run("flush with edge", func(t *testing.T) {
		if !page.ContainsRect(NewRect(0, 700, 600, 100)) {
			t.Error("expected edge-flush rect to be contained")
		}
	})
}

func TestRectIntersection(t *testing.T) {
	page := NewRect(0, 0, 600, 800)

	t.Run("overhanging box is clipped", func(t *testing.T) {
		box := NewRect(100, 780, 50, 40) // extends 20 past the bottom
		got := page.Intersection(box)
		if got.Bottom() != 800 {
			t.Errorf("Bottom() = %v, want flush at 800", got.Bottom())
		}
		if got.Height != 20 {
			t.Errorf("Height = %v, want 20", got.Height)
		}
		if got.Width != 50 || got.X != 100 {
			t.Errorf("unexpected horizontal clip: %+v", got)
		}
	})

	t.Run("disjoint boxes yield empty", func(t *testing.T) {
		box := NewRect(100, 900, 50, 40)
		got := page.Intersection(box)
		if !got.IsEmpty() {
			t.Errorf("expected empty intersection, got %+v", got)
		}
	})
}

func TestRectIsEmpty(t *testing.T) {
	if (Rect{}).IsEmpty() != true {
		t.Error("zero rect should be empty")
	}
	if NewRect(0, 0, 1, 1).IsEmpty() {
		t.Error("unit rect should not be empty")
	}
	if !NewRect(0, 0, math.SmallestNonzeroFloat64, 0).IsEmpty() {
		t.Error("zero-height rect should be empty")
	}
}
