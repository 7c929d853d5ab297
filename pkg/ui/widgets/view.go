package widgets

import (
	"errors"
	"slices"

	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/ui/runtime"
)

// Element wraps a widget inside a View. When Terminal is set, an Exited
// broadcast from the widget exits the View itself instead of just removing
// the element.
type Element struct {
	Widget   Widget
	Terminal bool
}

// View is an ordered stack of elements, topmost last.
type View struct {
	Base
	elements []Element
	showAll  bool
}

// NewView creates a view. With showAll every layer is drawn bottom to top,
// otherwise only the topmost layer is.
func NewView(showAll bool, elements ...Element) *View {
	return &View{elements: elements, showAll: showAll}
}

// Push adds an element on top.
func (v *View) Push(e Element) {
	v.elements = append(v.elements, e)
}

// Pop removes and returns the topmost element.
func (v *View) Pop() (Element, bool) {
	if len(v.elements) == 0 {
		return Element{}, false
	}
	last := v.elements[len(v.elements)-1]
	v.elements = v.elements[:len(v.elements)-1]
	return last, true
}

// Len returns the number of elements.
func (v *View) Len() int {
	return len(v.elements)
}

// Top returns the topmost element.
func (v *View) Top() (Element, bool) {
	if len(v.elements) == 0 {
		return Element{}, false
	}
	return v.elements[len(v.elements)-1], true
}

// Dispatch offers ev to each element from the top down and stops at the first
// one that does not ignore it.
func (v *View) Dispatch(ev events.Event, buf *runtime.Buffer, area runtime.Rect) (Broadcast, error) {
	for i := len(v.elements) - 1; i >= 0; i-- {
		el := v.elements[i]
		b, err := el.Widget.Dispatch(ev, buf, area)
		if err != nil {
			return Ignore(), err
		}
		switch b.Kind {
		case Ignored:
			continue
		case Exited:
			if el.Terminal {
				return Exit(), nil
			}
			v.elements = slices.Delete(v.elements, i, i+1)
			return Ignore(), Close(el.Widget)
		default:
			return b, nil
		}
	}
	return Ignore(), nil
}

// Layers groups the elements by z-index, lowest first. Elements keep their
// stack order within a layer.
func (v *View) Layers() [][]Element {
	sorted := slices.Clone(v.elements)
	slices.SortStableFunc(sorted, func(a, b Element) int {
		return a.Widget.ZIndex() - b.Widget.ZIndex()
	})

	var layers [][]Element
	for i, el := range sorted {
		if i == 0 || el.Widget.ZIndex() != sorted[i-1].Widget.ZIndex() {
			layers = append(layers, nil)
		}
		layers[len(layers)-1] = append(layers[len(layers)-1], el)
	}
	return layers
}

// Draw renders the top layer, or every layer when the view shows all.
func (v *View) Draw(buf *runtime.Buffer, area runtime.Rect) error {
	layers := v.Layers()
	if len(layers) == 0 {
		return nil
	}
	if !v.showAll {
		layers = layers[len(layers)-1:]
	}

	for _, layer := range layers {
		constraints := make([]runtime.Constraint, len(layer))
		for i, el := range layer {
			constraints[i] = el.Widget.Placement()
		}
		for i, rect := range runtime.SplitVertical(area, constraints) {
			if err := layer[i].Widget.Draw(buf, rect); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every element.
func (v *View) Close() error {
	var errs []error
	for _, el := range v.elements {
		errs = append(errs, Close(el.Widget))
	}
	return errors.Join(errs...)
}
