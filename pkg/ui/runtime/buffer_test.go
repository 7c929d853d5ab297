package runtime

import (
	"testing"

	"github.com/odvcencio/kuberift/pkg/ui/backend"
)

type recordingTarget struct {
	w, h  int
	cells map[[2]int]rune
}

func newRecordingTarget(w, h int) *recordingTarget {
	return &recordingTarget{w: w, h: h, cells: make(map[[2]int]rune)}
}

func (r *recordingTarget) Size() (int, int) { return r.w, r.h }

func (r *recordingTarget) SetContent(x, y int, mainc rune, _ []rune, _ backend.Style) {
	r.cells[[2]int{x, y}] = mainc
}

func TestBuffer_New(t *testing.T) {
	b := NewBuffer(80, 24)

	w, h := b.Size()
	if w != 80 || h != 24 {
		t.Errorf("Size() = %d, %d; want 80, 24", w, h)
	}
	if !b.IsDirty() {
		t.Error("new buffer should be fully dirty")
	}
}

func TestBuffer_SetOutOfBounds(t *testing.T) {
	b := NewBuffer(10, 10)

	b.Set(-1, 5, 'X', backend.DefaultStyle())
	b.Set(100, 5, 'X', backend.DefaultStyle())
	b.Set(5, -1, 'X', backend.DefaultStyle())
	b.Set(5, 100, 'X', backend.DefaultStyle())

	if cell := b.Get(-1, -1); cell.Rune != ' ' {
		t.Errorf("Get(-1,-1) = %c, want space", cell.Rune)
	}
}

func TestBuffer_SetStringClips(t *testing.T) {
	b := NewBuffer(20, 5)
	clip := Rect{X: 2, Y: 0, Width: 5, Height: 5}

	n := b.SetString(2, 1, "Hello, world", backend.DefaultStyle(), clip)

	if n != 5 {
		t.Errorf("SetString wrote %d columns, want 5", n)
	}
	if got := b.Text(1); got != "  Hello             " {
		t.Errorf("row = %q", got)
	}
}

func TestBuffer_SetStringWide(t *testing.T) {
	b := NewBuffer(6, 1)
	n := b.SetString(0, 0, "日本語", backend.DefaultStyle(), b.Area())

	if n != 6 {
		t.Errorf("wide runes should take two columns, wrote %d", n)
	}
	if got := b.Text(0); got != "日本語" {
		t.Errorf("row = %q", got)
	}
}

func TestBuffer_SetStringOutsideClipRow(t *testing.T) {
	b := NewBuffer(10, 3)
	if n := b.SetString(0, 2, "x", backend.DefaultStyle(), Rect{Width: 10, Height: 2}); n != 0 {
		t.Errorf("expected no write outside clip, wrote %d", n)
	}
}

func TestBuffer_FlushOnlyDirty(t *testing.T) {
	b := NewBuffer(4, 2)
	target := newRecordingTarget(4, 2)

	b.Flush(target)
	if len(target.cells) != 8 {
		t.Fatalf("first flush should write every cell, wrote %d", len(target.cells))
	}

	target = newRecordingTarget(4, 2)
	b.Set(1, 1, 'Z', backend.DefaultStyle())
	b.Set(2, 1, ' ', backend.DefaultStyle())
	b.Flush(target)

	if len(target.cells) != 1 {
		t.Fatalf("expected exactly one changed cell, got %d", len(target.cells))
	}
	if target.cells[[2]int{1, 1}] != 'Z' {
		t.Error("expected Z at (1,1)")
	}
	if b.IsDirty() {
		t.Error("flush should clear dirty flags")
	}
}

func TestBuffer_Resize(t *testing.T) {
	b := NewBuffer(4, 2)
	b.ClearDirty()
	b.Resize(6, 3)

	w, h := b.Size()
	if w != 6 || h != 3 {
		t.Errorf("Size() = %d, %d; want 6, 3", w, h)
	}
	if !b.IsDirty() {
		t.Error("resize should mark everything dirty")
	}
}

func TestBuffer_DrawTitledBox(t *testing.T) {
	b := NewBuffer(12, 3)
	b.DrawTitledBox(b.Area(), "Pods", backend.DefaultStyle())

	if got := b.Text(0); got != "┌─ Pods ───┐" {
		t.Errorf("top = %q", got)
	}
	if got := b.Text(2); got != "└──────────┘" {
		t.Errorf("bottom = %q", got)
	}
}

func TestRect_Helpers(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 6}

	if in := r.Inset(1); in != (Rect{X: 1, Y: 1, Width: 8, Height: 4}) {
		t.Errorf("Inset = %+v", in)
	}
	if c := r.Centered(4, 2); c != (Rect{X: 3, Y: 2, Width: 4, Height: 2}) {
		t.Errorf("Centered = %+v", c)
	}
	if !r.Inset(10).IsEmpty() {
		t.Error("over-inset rect should be empty")
	}
	if got := r.Intersection(Rect{X: 8, Y: 4, Width: 10, Height: 10}); got != (Rect{X: 8, Y: 4, Width: 2, Height: 2}) {
		t.Errorf("Intersection = %+v", got)
	}
}
