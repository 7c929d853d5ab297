// Package runtime provides the cell buffer and layout primitives the
// dashboard widgets draw with.
package runtime

// Rect is a rectangular region in cell coordinates.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Size returns width and height.
func (r Rect) Size() (int, int) {
	return r.Width, r.Height
}

// IsEmpty reports whether the rect has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains returns true if the point is inside the rect.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Inset returns a rect shrunk by the given amount on every side.
func (r Rect) Inset(n int) Rect {
	out := Rect{X: r.X + n, Y: r.Y + n, Width: r.Width - 2*n, Height: r.Height - 2*n}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

// Row returns the single-line rect at offset dy inside r.
func (r Rect) Row(dy int) Rect {
	if dy < 0 || dy >= r.Height {
		return Rect{X: r.X, Y: r.Y, Width: r.Width}
	}
	return Rect{X: r.X, Y: r.Y + dy, Width: r.Width, Height: 1}
}

// Intersection returns the overlapping area of two rects.
func (r Rect) Intersection(other Rect) Rect {
	x0 := max(r.X, other.X)
	y0 := max(r.Y, other.Y)
	x1 := min(r.X+r.Width, other.X+other.Width)
	y1 := min(r.Y+r.Height, other.Y+other.Height)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Centered returns a w×h rect centered inside r, clipped to r.
func (r Rect) Centered(w, h int) Rect {
	w = min(w, r.Width)
	h = min(h, r.Height)
	return Rect{
		X:      r.X + (r.Width-w)/2,
		Y:      r.Y + (r.Height-h)/2,
		Width:  w,
		Height: h,
	}
}
