package panels

import (
	"strings"

	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/ui/backend"
	"github.com/odvcencio/kuberift/pkg/ui/runtime"
	"github.com/odvcencio/kuberift/pkg/ui/terminal"
	"github.com/odvcencio/kuberift/pkg/ui/widgets"
)

// ZDetail is the layer details are drawn on, above their list.
const ZDetail = 1

type action struct {
	key  rune
	hint string
	run  func() widgets.Broadcast
}

// Detail shows one object under a title line as a set of tabs.
type Detail struct {
	title   string
	tabs    *widgets.Tabs
	actions []action
}

func newDetail(title string, tabs *widgets.Tabs, actions ...action) *Detail {
	return &Detail{title: title, tabs: tabs, actions: actions}
}

// Title returns the name of the shown object.
func (d *Detail) Title() string {
	return d.title
}

func (d *Detail) Placement() runtime.Constraint { return runtime.Fill(1) }
func (d *Detail) ZIndex() int                   { return ZDetail }

func (d *Detail) split(area runtime.Rect) []runtime.Rect {
	return runtime.SplitVertical(area, []runtime.Constraint{runtime.Length(1), runtime.Fill(1), runtime.Length(1)})
}

func (d *Detail) Dispatch(ev events.Event, buf *runtime.Buffer, area runtime.Rect) (widgets.Broadcast, error) {
	b, err := d.tabs.Dispatch(ev, buf, d.split(area)[1])
	if err != nil || b.Kind != widgets.Ignored {
		return b, err
	}

	key, ok := events.KeyOf(ev)
	if !ok {
		return widgets.Ignore(), nil
	}
	if key.Is(terminal.KeyEscape) {
		return widgets.Exit(), nil
	}
	for _, a := range d.actions {
		if key.IsRune(a.key) {
			return a.run(), nil
		}
	}
	return widgets.Ignore(), nil
}

func (d *Detail) Draw(buf *runtime.Buffer, area runtime.Rect) error {
	if area.IsEmpty() {
		return nil
	}
	rows := d.split(area)
	buf.Fill(area, ' ', backend.DefaultStyle())

	top := rows[0]
	buf.Fill(top, '─', backend.StyleBorder)
	buf.SetString(top.X+1, top.Y, " "+d.title+" ", backend.StyleTitle, top)

	if err := d.tabs.Draw(buf, rows[1]); err != nil {
		return err
	}

	hints := []string{"esc back", "tab switch"}
	for _, a := range d.actions {
		hints = append(hints, string(a.key)+" "+a.hint)
	}
	buf.SetString(rows[2].X, rows[2].Y, strings.Join(hints, "  "), backend.StyleMuted, rows[2])
	return nil
}

func (d *Detail) Close() error {
	return d.tabs.Close()
}
