// Package panels assembles the dashboard's resource screens from the generic
// widgets: the root frame, resource lists, details and the exec passthrough.
package panels

import (
	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/logging"
	"github.com/odvcencio/kuberift/pkg/resources"
	"github.com/odvcencio/kuberift/pkg/ui/runtime"
	"github.com/odvcencio/kuberift/pkg/ui/terminal"
	"github.com/odvcencio/kuberift/pkg/ui/widgets"
)

// Options scope the panels of one session.
type Options struct {
	// Namespace limits namespaced lists. Empty means all namespaces.
	Namespace string
	Logger    *logging.Logger
}

func (o Options) logger() *logging.Logger {
	if o.Logger == nil {
		return logging.Discard()
	}
	return o.Logger
}

// List shows a live table of one resource kind. A loading overlay covers the
// table until the store's initial list arrives. Enter opens the selected
// item's detail on top of the table; Escape with nothing open exits.
type List[K any] struct {
	widgets.Base
	store   *resources.Store[K]
	table   *widgets.Table[K]
	view    *widgets.View
	detail  func(*K) widgets.Widget
	loading bool
}

func newList[K any](store *resources.Store[K], table *widgets.Table[K], detail func(*K) widgets.Widget) *List[K] {
	return &List[K]{
		store:  store,
		table:  table,
		detail: detail,
		view: widgets.NewView(false,
			widgets.Element{Widget: table, Terminal: true},
			widgets.Element{Widget: &widgets.Loading{}},
		),
		loading: true,
	}
}

// Table returns the list's table.
func (l *List[K]) Table() *widgets.Table[K] {
	return l.table
}

// Loading reports whether the loading overlay is still shown.
func (l *List[K]) Loading() bool {
	return l.loading
}

// refresh drops the loading overlay once the store has synced.
func (l *List[K]) refresh() {
	if l.loading && !l.store.Loading() {
		l.view.Pop()
		l.loading = false
	}
}

func (l *List[K]) detailOpen() bool {
	return !l.loading && l.view.Len() > 1
}

func (l *List[K]) Dispatch(ev events.Event, buf *runtime.Buffer, area runtime.Rect) (widgets.Broadcast, error) {
	l.refresh()

	before := l.view.Len()
	b, err := l.view.Dispatch(ev, buf, area)
	if err != nil || b.Kind != widgets.Ignored {
		return b, err
	}
	if l.view.Len() != before {
		// a detail closed itself
		return widgets.Consume(), nil
	}

	key, ok := events.KeyOf(ev)
	if !ok || l.detailOpen() {
		return widgets.Ignore(), nil
	}
	switch {
	case key.Is(terminal.KeyEnter):
		if l.loading {
			return widgets.Ignore(), nil
		}
		item, ok := l.table.Selected()
		if !ok {
			return widgets.Ignore(), nil
		}
		l.view.Push(widgets.Element{Widget: l.detail(item)})
		return widgets.Consume(), nil
	case key.Is(terminal.KeyEscape):
		return widgets.Exit(), nil
	}
	return widgets.Ignore(), nil
}

func (l *List[K]) Draw(buf *runtime.Buffer, area runtime.Rect) error {
	l.refresh()
	return l.view.Draw(buf, area)
}

// Close stops the list's watch and closes any open detail.
func (l *List[K]) Close() error {
	l.store.Close()
	return l.view.Close()
}
