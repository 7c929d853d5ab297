package runtime

import (
	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/kuberift/pkg/ui/backend"
)

// Cell represents a single character cell in the buffer.
type Cell struct {
	Rune  rune
	Style backend.Style
}

// Buffer is a 2D grid of cells. Widgets draw into the buffer; the render loop
// flushes the dirty cells to the backend once per frame.
type Buffer struct {
	cells  []Cell
	width  int
	height int

	dirty      []bool
	dirtyCount int
}

// NewBuffer creates a buffer with the given dimensions.
func NewBuffer(w, h int) *Buffer {
	w, h = max(w, 0), max(h, 0)
	b := &Buffer{
		cells:  make([]Cell, w*h),
		dirty:  make([]bool, w*h),
		width:  w,
		height: h,
	}
	for i := range b.cells {
		b.cells[i] = Cell{Rune: ' ', Style: backend.DefaultStyle()}
	}
	b.MarkAllDirty()
	return b
}

// Size returns the buffer dimensions.
func (b *Buffer) Size() (w, h int) {
	return b.width, b.height
}

// Area returns the full buffer rect.
func (b *Buffer) Area() Rect {
	return Rect{Width: b.width, Height: b.height}
}

// Resize changes the buffer dimensions. Content is discarded and the whole
// buffer is marked dirty.
func (b *Buffer) Resize(w, h int) {
	if w == b.width && h == b.height {
		return
	}
	*b = *NewBuffer(w, h)
}

// Clear fills the buffer with spaces and default style.
func (b *Buffer) Clear() {
	b.Fill(b.Area(), ' ', backend.DefaultStyle())
}

// Get returns the cell at position (x, y). Out of bounds reads return a blank.
func (b *Buffer) Get(x, y int) Cell {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Cell{Rune: ' '}
	}
	return b.cells[y*b.width+x]
}

// Set writes a rune with style at position (x, y). No-op if out of bounds.
func (b *Buffer) Set(x, y int, r rune, s backend.Style) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	idx := y*b.width + x
	cell := Cell{Rune: r, Style: s}
	if b.cells[idx] != cell {
		b.cells[idx] = cell
		b.markDirty(idx)
	}
}

// SetString writes s starting at (x, y), clipped to the rect clip. Wide runes
// occupy two cells. Returns the number of columns written.
func (b *Buffer) SetString(x, y int, s string, style backend.Style, clip Rect) int {
	if y < clip.Y || y >= clip.Y+clip.Height {
		return 0
	}
	right := clip.X + clip.Width
	col := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > right {
			break
		}
		if col >= clip.X {
			b.Set(col, y, r, style)
			if w == 2 {
				b.Set(col+1, y, 0, style)
			}
		}
		col += w
	}
	return col - x
}

// Fill fills a rectangular region with a rune and style.
func (b *Buffer) Fill(r Rect, ch rune, s backend.Style) {
	r = r.Intersection(b.Area())
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			b.Set(x, y, ch, s)
		}
	}
}

// DrawBox draws a border around r using box-drawing characters.
func (b *Buffer) DrawBox(r Rect, s backend.Style) {
	if r.Width < 2 || r.Height < 2 {
		return
	}
	x1, y1 := r.X+r.Width-1, r.Y+r.Height-1

	b.Set(r.X, r.Y, '┌', s)
	b.Set(x1, r.Y, '┐', s)
	b.Set(r.X, y1, '└', s)
	b.Set(x1, y1, '┘', s)
	for x := r.X + 1; x < x1; x++ {
		b.Set(x, r.Y, '─', s)
		b.Set(x, y1, '─', s)
	}
	for y := r.Y + 1; y < y1; y++ {
		b.Set(r.X, y, '│', s)
		b.Set(x1, y, '│', s)
	}
}

// DrawTitledBox draws a box with a title inset into the top edge.
func (b *Buffer) DrawTitledBox(r Rect, title string, s backend.Style) {
	b.DrawBox(r, s)
	if title == "" || r.Width < 5 {
		return
	}
	b.SetString(r.X+2, r.Y, " "+title+" ", s.Bold(true), Rect{X: r.X + 1, Y: r.Y, Width: r.Width - 2, Height: 1})
}

func (b *Buffer) markDirty(idx int) {
	if !b.dirty[idx] {
		b.dirty[idx] = true
		b.dirtyCount++
	}
}

// MarkAllDirty forces the next flush to rewrite every cell.
func (b *Buffer) MarkAllDirty() {
	for i := range b.dirty {
		b.dirty[i] = true
	}
	b.dirtyCount = len(b.dirty)
}

// ClearDirty resets all dirty flags.
func (b *Buffer) ClearDirty() {
	clear(b.dirty)
	b.dirtyCount = 0
}

// IsDirty returns true if any cells have changed since the last ClearDirty.
func (b *Buffer) IsDirty() bool {
	return b.dirtyCount > 0
}

// ForEachDirtyCell calls fn for each dirty cell in row-major order.
func (b *Buffer) ForEachDirtyCell(fn func(x, y int, cell Cell)) {
	if b.dirtyCount == 0 {
		return
	}
	for idx, d := range b.dirty {
		if d {
			fn(idx%b.width, idx/b.width, b.cells[idx])
		}
	}
}

// Flush writes the dirty cells to the target and clears the dirty flags.
func (b *Buffer) Flush(target backend.RenderTarget) {
	b.ForEachDirtyCell(func(x, y int, cell Cell) {
		target.SetContent(x, y, cell.Rune, nil, cell.Style)
	})
	b.ClearDirty()
}

// Text returns the buffer content of row y as a string, for tests and the
// debug panel.
func (b *Buffer) Text(y int) string {
	if y < 0 || y >= b.height {
		return ""
	}
	out := make([]rune, 0, b.width)
	for x := 0; x < b.width; x++ {
		r := b.cells[y*b.width+x].Rune
		if r == 0 {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
