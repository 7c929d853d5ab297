package runtime

import "fmt"

// ConstraintKind selects how a Constraint claims space.
type ConstraintKind int

const (
	// KindFill shares leftover space in proportion to its weight.
	KindFill ConstraintKind = iota
	// KindLength claims an exact number of cells.
	KindLength
	// KindMin claims at least its value, and absorbs leftover space when no
	// Fill constraint is present.
	KindMin
	// KindPercentage claims a percentage of the total.
	KindPercentage
)

// Constraint describes how much of a split a child wants.
type Constraint struct {
	Kind  ConstraintKind
	Value int
}

// Length claims exactly n cells.
func Length(n int) Constraint { return Constraint{Kind: KindLength, Value: n} }

// Min claims at least n cells.
func Min(n int) Constraint { return Constraint{Kind: KindMin, Value: n} }

// Percentage claims p percent of the available cells.
func Percentage(p int) Constraint { return Constraint{Kind: KindPercentage, Value: p} }

// Fill shares leftover space with other Fill constraints by weight.
func Fill(weight int) Constraint { return Constraint{Kind: KindFill, Value: max(weight, 1)} }

func (c Constraint) String() string {
	switch c.Kind {
	case KindLength:
		return fmt.Sprintf("Length(%d)", c.Value)
	case KindMin:
		return fmt.Sprintf("Min(%d)", c.Value)
	case KindPercentage:
		return fmt.Sprintf("Percentage(%d)", c.Value)
	default:
		return fmt.Sprintf("Fill(%d)", c.Value)
	}
}

// SplitVertical divides area into stacked rows, one per constraint.
func SplitVertical(area Rect, constraints []Constraint) []Rect {
	sizes := distribute(area.Height, constraints)
	out := make([]Rect, len(sizes))
	y := area.Y
	for i, h := range sizes {
		out[i] = Rect{X: area.X, Y: y, Width: area.Width, Height: h}
		y += h
	}
	return out
}

// SplitHorizontal divides area into side by side columns.
func SplitHorizontal(area Rect, constraints []Constraint) []Rect {
	sizes := distribute(area.Width, constraints)
	out := make([]Rect, len(sizes))
	x := area.X
	for i, w := range sizes {
		out[i] = Rect{X: x, Y: area.Y, Width: w, Height: area.Height}
		x += w
	}
	return out
}

// distribute assigns cell counts that sum to at most total. Fixed claims are
// honored first in order; whatever they leave goes to Fill by weight, or to
// the last Min if there is no Fill.
func distribute(total int, constraints []Constraint) []int {
	sizes := make([]int, len(constraints))
	if total <= 0 {
		return sizes
	}

	remaining := total
	fillWeight := 0
	lastMin := -1
	for i, c := range constraints {
		var want int
		switch c.Kind {
		case KindLength, KindMin:
			want = c.Value
		case KindPercentage:
			want = total * c.Value / 100
		case KindFill:
			fillWeight += c.Value
			continue
		}
		if c.Kind == KindMin {
			lastMin = i
		}
		want = max(min(want, remaining), 0)
		sizes[i] = want
		remaining -= want
	}

	if remaining <= 0 {
		return sizes
	}
	if fillWeight == 0 {
		if lastMin >= 0 {
			sizes[lastMin] += remaining
		}
		return sizes
	}

	lastFill := -1
	given := 0
	for i, c := range constraints {
		if c.Kind != KindFill {
			continue
		}
		share := remaining * c.Value / fillWeight
		sizes[i] = share
		given += share
		lastFill = i
	}
	sizes[lastFill] += remaining - given
	return sizes
}
