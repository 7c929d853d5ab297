// Package widgets provides the widget contract of the dashboard and the
// generic widgets panels are assembled from.
package widgets

import (
	"context"
	"io"

	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/ui/runtime"
)

// Widget is an interactive panel drawn onto a region of the terminal.
//
// Dispatch may change the widget's own state but must not draw. Draw renders
// the current state into area. A widget owns its children; results travel
// upward only through the returned Broadcast.
type Widget interface {
	Dispatch(ev events.Event, buf *runtime.Buffer, area runtime.Rect) (Broadcast, error)
	Draw(buf *runtime.Buffer, area runtime.Rect) error
	Placement() runtime.Constraint
	ZIndex() int
}

// Raw is a widget that takes over the transport while it runs. Start reads
// events from input until it is done or ctx is cancelled, and writes its
// output directly to out.
type Raw interface {
	Start(ctx context.Context, input <-chan events.Event, out io.Writer) error
}

// BroadcastKind is the outcome of a dispatch.
type BroadcastKind int

const (
	Ignored BroadcastKind = iota
	Consumed
	Exited
	RawTakeover
)

func (k BroadcastKind) String() string {
	switch k {
	case Consumed:
		return "consumed"
	case Exited:
		return "exited"
	case RawTakeover:
		return "raw"
	default:
		return "ignored"
	}
}

// Broadcast is returned from Dispatch. Raw is set only for RawTakeover.
type Broadcast struct {
	Kind BroadcastKind
	Raw  Raw
}

func Ignore() Broadcast  { return Broadcast{Kind: Ignored} }
func Consume() Broadcast { return Broadcast{Kind: Consumed} }
func Exit() Broadcast    { return Broadcast{Kind: Exited} }

// TakeOver hands r to the render loop, which runs it with exclusive use of
// the terminal.
func TakeOver(r Raw) Broadcast {
	return Broadcast{Kind: RawTakeover, Raw: r}
}

// Base provides the default Placement and ZIndex. Embed it in widget structs.
type Base struct{}

// Placement fills the available vertical space.
func (Base) Placement() runtime.Constraint { return runtime.Fill(1) }

// ZIndex is the bottom layer.
func (Base) ZIndex() int { return 0 }

// placed overrides the layout hints of a wrapped widget.
type placed struct {
	Widget
	constraint runtime.Constraint
	z          int
}

func (p placed) Placement() runtime.Constraint { return p.constraint }
func (p placed) ZIndex() int                   { return p.z }

func (p placed) Close() error { return Close(p.Widget) }

// WithPlacement returns w with a different placement.
func WithPlacement(w Widget, c runtime.Constraint) Widget {
	return placed{Widget: w, constraint: c, z: w.ZIndex()}
}

// WithZIndex returns w on a different layer.
func WithZIndex(w Widget, z int) Widget {
	return placed{Widget: w, constraint: w.Placement(), z: z}
}

// Close releases w's resources when w holds any, such as a watch.
func Close(w Widget) error {
	if c, ok := w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
