package widgets

import (
	"errors"

	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/ui/backend"
	"github.com/odvcencio/kuberift/pkg/ui/runtime"
	"github.com/odvcencio/kuberift/pkg/ui/terminal"
)

// Tab is one page of a Tabs widget. New is called the first time the tab is
// shown, and again if a non-terminal element exits.
type Tab struct {
	Name string
	New  func() Element
}

// Tabs shows one of several pages under a tab bar.
type Tabs struct {
	Base
	tabs    []Tab
	pages   []*Element
	current int
}

// NewTabs creates a tab container showing the first tab.
func NewTabs(tabs ...Tab) *Tabs {
	return &Tabs{tabs: tabs, pages: make([]*Element, len(tabs))}
}

// Current returns the index of the visible tab.
func (t *Tabs) Current() int {
	return t.current
}

// Select switches to tab i.
func (t *Tabs) Select(i int) {
	if i >= 0 && i < len(t.tabs) {
		t.current = i
	}
}

func (t *Tabs) page(i int) *Element {
	if t.pages[i] == nil {
		el := t.tabs[i].New()
		t.pages[i] = &el
	}
	return t.pages[i]
}

func (t *Tabs) Dispatch(ev events.Event, buf *runtime.Buffer, area runtime.Rect) (Broadcast, error) {
	if len(t.tabs) == 0 {
		return Ignore(), nil
	}

	page := t.page(t.current)
	b, err := page.Widget.Dispatch(ev, buf, t.body(area))
	if err != nil {
		return Ignore(), err
	}
	switch b.Kind {
	case Exited:
		if page.Terminal {
			return Exit(), nil
		}
		err := Close(page.Widget)
		t.pages[t.current] = nil
		return Consume(), err
	case Consumed, RawTakeover:
		return b, nil
	}

	key, ok := events.KeyOf(ev)
	if !ok {
		return Ignore(), nil
	}
	switch {
	case key.Is(terminal.KeyTab), key.Is(terminal.KeyRight):
		t.current = (t.current + 1) % len(t.tabs)
	case key.Is(terminal.KeyBackTab), key.Is(terminal.KeyLeft):
		t.current = (t.current + len(t.tabs) - 1) % len(t.tabs)
	case key.Key == terminal.KeyRune && !key.Alt && key.Rune >= '1' && key.Rune <= '9':
		idx := int(key.Rune - '1')
		if idx >= len(t.tabs) {
			return Ignore(), nil
		}
		t.current = idx
	default:
		return Ignore(), nil
	}
	return Consume(), nil
}

func (t *Tabs) body(area runtime.Rect) runtime.Rect {
	return runtime.SplitVertical(area, []runtime.Constraint{runtime.Length(1), runtime.Fill(1)})[1]
}

func (t *Tabs) Draw(buf *runtime.Buffer, area runtime.Rect) error {
	if area.IsEmpty() || len(t.tabs) == 0 {
		return nil
	}
	rows := runtime.SplitVertical(area, []runtime.Constraint{runtime.Length(1), runtime.Fill(1)})
	bar := rows[0]

	buf.Fill(bar, ' ', backend.DefaultStyle())
	x := bar.X
	for i, tab := range t.tabs {
		style := backend.StyleMuted
		if i == t.current {
			style = backend.StyleActiveTab
		}
		if i > 0 {
			x += buf.SetString(x, bar.Y, " │ ", backend.StyleBorder, bar)
		} else {
			x += buf.SetString(x, bar.Y, " ", backend.DefaultStyle(), bar)
		}
		x += buf.SetString(x, bar.Y, tab.Name, style, bar)
	}

	return t.page(t.current).Widget.Draw(buf, rows[1])
}

// Close closes every page that has been built.
func (t *Tabs) Close() error {
	var errs []error
	for i, page := range t.pages {
		if page != nil {
			errs = append(errs, Close(page.Widget))
			t.pages[i] = nil
		}
	}
	return errors.Join(errs...)
}
