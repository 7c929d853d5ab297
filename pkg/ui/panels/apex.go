package panels

import (
	"fmt"

	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/kube"
	"github.com/odvcencio/kuberift/pkg/ui/backend"
	"github.com/odvcencio/kuberift/pkg/ui/runtime"
	"github.com/odvcencio/kuberift/pkg/ui/widgets"
)

// Apex is the root widget of a session: a bordered frame around the Pods and
// Nodes tabs, with the debug panel below them when debug logging is on.
// Failures reported by background work and raw sessions are shown as error
// overlays.
type Apex struct {
	widgets.Base
	view *widgets.View
}

// NewApex builds the root widget for one session.
func NewApex(client *kube.Client, opts Options) *Apex {
	tabs := widgets.NewTabs(PodsTab(client, opts), NodesTab(client, opts))

	elements := []widgets.Element{{Widget: tabs, Terminal: true}}
	if opts.logger().DebugEnabled() {
		elements = append(elements, widgets.Element{Widget: &widgets.Debug{}})
	}
	return &Apex{view: widgets.NewView(true, elements...)}
}

func (a *Apex) Dispatch(ev events.Event, buf *runtime.Buffer, area runtime.Rect) (widgets.Broadcast, error) {
	switch ev := ev.(type) {
	case events.Tunnel:
		if ev.Err != nil {
			a.view.Push(widgets.Element{Widget: widgets.NewError(fmt.Sprintf("%s: %v", ev.Name, ev.Err))})
		}
	case events.Finished:
		if ev.Err != nil {
			a.view.Push(widgets.Element{Widget: widgets.NewError(ev.Err.Error())})
		}
	}
	return a.view.Dispatch(ev, buf, area.Inset(1))
}

func (a *Apex) Draw(buf *runtime.Buffer, area runtime.Rect) error {
	buf.DrawTitledBox(area, "kuberift", backend.StyleBorder)
	return a.view.Draw(buf, area.Inset(1))
}

// Close stops every watch the session started.
func (a *Apex) Close() error {
	return a.view.Close()
}
