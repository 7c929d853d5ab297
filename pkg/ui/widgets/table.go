package widgets

import (
	"strings"

	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/ui/backend"
	"github.com/odvcencio/kuberift/pkg/ui/runtime"
	"github.com/odvcencio/kuberift/pkg/ui/terminal"
)

// Column describes one table column.
type Column[T any] struct {
	Title string
	Width runtime.Constraint
	Value func(*T) string
}

// Table lists items with a movable selection and an optional name filter.
// Items are pulled from the source on every draw.
type Table[T any] struct {
	Base
	columns []Column[T]
	source  func() []*T
	name    func(*T) string

	selected  int
	offset    int
	page      int
	filter    string
	filtering bool
}

// NewTable creates a table over source. name returns the string the filter
// matches against.
func NewTable[T any](source func() []*T, name func(*T) string, columns ...Column[T]) *Table[T] {
	return &Table[T]{columns: columns, source: source, name: name, page: 10}
}

// Rows returns the items that pass the current filter.
func (t *Table[T]) Rows() []*T {
	items := t.source()
	if t.filter == "" {
		return items
	}
	needle := strings.ToLower(t.filter)
	out := make([]*T, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(t.name(item)), needle) {
			out = append(out, item)
		}
	}
	return out
}

// Selected returns the highlighted item.
func (t *Table[T]) Selected() (*T, bool) {
	rows := t.Rows()
	if len(rows) == 0 {
		return nil, false
	}
	return rows[min(t.selected, len(rows)-1)], true
}

// SelectedIndex returns the highlighted row index.
func (t *Table[T]) SelectedIndex() int {
	return t.selected
}

// Filter returns the active filter text.
func (t *Table[T]) Filter() string {
	return t.filter
}

// Filtering reports whether typed runes currently edit the filter.
func (t *Table[T]) Filtering() bool {
	return t.filtering
}

func (t *Table[T]) move(delta int) {
	n := len(t.Rows())
	t.selected = max(0, min(t.selected+delta, n-1))
}

func (t *Table[T]) Dispatch(ev events.Event, _ *runtime.Buffer, _ runtime.Rect) (Broadcast, error) {
	key, ok := events.KeyOf(ev)
	if !ok {
		return Ignore(), nil
	}

	if t.filtering {
		switch {
		case key.Is(terminal.KeyEnter):
			t.filtering = false
		case key.Is(terminal.KeyEscape):
			t.filtering = false
			t.filter = ""
		case key.Is(terminal.KeyBackspace):
			if r := []rune(t.filter); len(r) > 0 {
				t.filter = string(r[:len(r)-1])
			}
		case key.Key == terminal.KeyRune && !key.Alt:
			t.filter += string(key.Rune)
		default:
			return Ignore(), nil
		}
		t.selected = 0
		t.offset = 0
		return Consume(), nil
	}

	switch {
	case key.IsRune('/'):
		t.filtering = true
	case key.Is(terminal.KeyEscape) && t.filter != "":
		t.filter = ""
		t.selected = 0
	case key.Is(terminal.KeyUp), key.IsRune('k'):
		t.move(-1)
	case key.Is(terminal.KeyDown), key.IsRune('j'):
		t.move(1)
	case key.Is(terminal.KeyPageUp):
		t.move(-t.page)
	case key.Is(terminal.KeyPageDown):
		t.move(t.page)
	case key.Is(terminal.KeyHome), key.IsRune('g'):
		t.selected = 0
	case key.Is(terminal.KeyEnd), key.IsRune('G'):
		t.move(len(t.Rows()))
	default:
		return Ignore(), nil
	}
	return Consume(), nil
}

func (t *Table[T]) Draw(buf *runtime.Buffer, area runtime.Rect) error {
	if area.IsEmpty() {
		return nil
	}
	buf.Fill(area, ' ', backend.DefaultStyle())

	constraints := []runtime.Constraint{runtime.Length(1), runtime.Fill(1)}
	showFilter := t.filtering || t.filter != ""
	if showFilter {
		constraints = append(constraints, runtime.Length(1))
	}
	parts := runtime.SplitVertical(area, constraints)
	header, body := parts[0], parts[1]

	widths := make([]runtime.Constraint, len(t.columns))
	for i, c := range t.columns {
		widths[i] = c.Width
	}
	cols := runtime.SplitHorizontal(area, widths)

	for i, c := range t.columns {
		buf.SetString(cols[i].X, header.Y, padRight(c.Title, cols[i].Width-1), backend.StyleHeader, header)
	}

	rows := t.Rows()
	t.page = max(body.Height, 1)
	t.selected = max(0, min(t.selected, len(rows)-1))
	if t.selected < t.offset {
		t.offset = t.selected
	}
	if t.selected >= t.offset+body.Height {
		t.offset = t.selected - body.Height + 1
	}
	t.offset = max(0, min(t.offset, len(rows)-1))

	if len(rows) == 0 {
		buf.SetString(body.X, body.Y, "No resources", backend.StyleMuted, body)
	}
	for line := 0; line < body.Height && t.offset+line < len(rows); line++ {
		idx := t.offset + line
		y := body.Y + line
		style := backend.DefaultStyle()
		if idx == t.selected {
			style = backend.StyleSelected
			buf.Fill(body.Row(line), ' ', style)
		}
		for i, c := range t.columns {
			buf.SetString(cols[i].X, y, truncate(c.Value(rows[idx]), cols[i].Width-1), style, body)
		}
	}

	if showFilter {
		prompt := "/" + t.filter
		if t.filtering {
			prompt += "▏"
		}
		buf.SetString(parts[2].X, parts[2].Y, prompt, backend.StyleTitle, parts[2])
	}
	return nil
}
