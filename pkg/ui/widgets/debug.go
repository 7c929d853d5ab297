package widgets

import (
	"fmt"
	"strings"

	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/ui/backend"
	"github.com/odvcencio/kuberift/pkg/ui/runtime"
)

const debugHistory = 5

// Debug shows recent events and the frame count. It observes every event
// that reaches it and never handles any.
type Debug struct {
	recent []string
	frames int
	total  int
}

func (d *Debug) Placement() runtime.Constraint { return runtime.Length(debugHistory + 1) }
func (d *Debug) ZIndex() int                   { return 0 }

// Recent returns the names of the last few events, oldest first.
func (d *Debug) Recent() []string {
	return d.recent
}

func (d *Debug) Dispatch(ev events.Event, _ *runtime.Buffer, _ runtime.Rect) (Broadcast, error) {
	d.total++
	d.recent = append(d.recent, events.Name(ev))
	if len(d.recent) > debugHistory {
		d.recent = d.recent[len(d.recent)-debugHistory:]
	}
	return Ignore(), nil
}

func (d *Debug) Draw(buf *runtime.Buffer, area runtime.Rect) error {
	if area.IsEmpty() {
		return nil
	}
	d.frames++
	buf.Fill(area, ' ', backend.DefaultStyle())
	w, h := buf.Size()
	status := fmt.Sprintf("debug  frames=%d events=%d size=%dx%d", d.frames, d.total, w, h)
	buf.SetString(area.X, area.Y, padRight(status, area.Width), backend.StyleHeader, area)
	for i, name := range d.recent {
		buf.SetString(area.X, area.Y+1+i, strings.Repeat(" ", 2)+name, backend.StyleMuted, area)
	}
	return nil
}
