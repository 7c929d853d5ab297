package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func heights(rects []Rect) []int {
	out := make([]int, len(rects))
	for i, r := range rects {
		out[i] = r.Height
	}
	return out
}

func TestSplitVertical(t *testing.T) {
	area := Rect{X: 1, Y: 2, Width: 10, Height: 20}

	tests := []struct {
		name        string
		constraints []Constraint
		want        []int
	}{
		{"single fill", []Constraint{Fill(1)}, []int{20}},
		{"length then fill", []Constraint{Length(3), Fill(1)}, []int{3, 17}},
		{"weighted fill", []Constraint{Fill(1), Fill(3)}, []int{5, 15}},
		{"percentage", []Constraint{Percentage(25), Fill(1)}, []int{5, 15}},
		{"min absorbs leftover", []Constraint{Length(2), Min(4)}, []int{2, 18}},
		{"overflow clips in order", []Constraint{Length(15), Length(15)}, []int{15, 5}},
		{"uneven fill remainder", []Constraint{Fill(1), Fill(1), Fill(1)}, []int{6, 6, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rects := SplitVertical(area, tt.constraints)
			assert.Equal(t, tt.want, heights(rects))

			y := area.Y
			for _, r := range rects {
				assert.Equal(t, y, r.Y)
				assert.Equal(t, area.X, r.X)
				assert.Equal(t, area.Width, r.Width)
				y += r.Height
			}
			assert.LessOrEqual(t, y, area.Y+area.Height)
		})
	}
}

func TestSplitHorizontal(t *testing.T) {
	rects := SplitHorizontal(Rect{Width: 30, Height: 1}, []Constraint{Length(10), Fill(1)})
	assert.Equal(t, Rect{X: 0, Width: 10, Height: 1}, rects[0])
	assert.Equal(t, Rect{X: 10, Width: 20, Height: 1}, rects[1])
}

func TestSplitEmptyArea(t *testing.T) {
	rects := SplitVertical(Rect{Width: 5}, []Constraint{Fill(1), Length(2)})
	assert.Equal(t, []int{0, 0}, heights(rects))
}

func TestConstraintString(t *testing.T) {
	assert.Equal(t, "Length(3)", Length(3).String())
	assert.Equal(t, "Fill(1)", Fill(0).String())
}
