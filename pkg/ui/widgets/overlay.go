package widgets

import (
	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/ui/backend"
	"github.com/odvcencio/kuberift/pkg/ui/runtime"
	"github.com/odvcencio/kuberift/pkg/ui/terminal"
)

// Layers used by overlays.
const (
	ZLoading = 10
	ZError   = 100
)

// Error is a modal message box. Escape, Enter or q dismisses it; every other
// key is swallowed while it is shown.
type Error struct {
	Message string
}

// NewError creates an error overlay.
func NewError(message string) *Error {
	return &Error{Message: message}
}

func (e *Error) Placement() runtime.Constraint { return runtime.Fill(1) }
func (e *Error) ZIndex() int                   { return ZError }

func (e *Error) Dispatch(ev events.Event, _ *runtime.Buffer, _ runtime.Rect) (Broadcast, error) {
	key, ok := events.KeyOf(ev)
	if !ok {
		return Ignore(), nil
	}
	if key.Is(terminal.KeyEscape) || key.Is(terminal.KeyEnter) || key.IsRune('q') {
		return Exit(), nil
	}
	return Consume(), nil
}

func (e *Error) Draw(buf *runtime.Buffer, area runtime.Rect) error {
	width := min(max(area.Width*2/3, 20), area.Width)
	lines := wrap(e.Message, max(width-4, 1))
	box := area.Centered(width, len(lines)+4)
	if box.IsEmpty() {
		return nil
	}

	buf.Fill(box, ' ', backend.DefaultStyle())
	buf.DrawTitledBox(box, "Error", backend.StyleError)
	inner := box.Inset(1)
	inner.X++
	inner.Width -= 2
	for i, line := range lines {
		buf.SetString(inner.X, inner.Y+i, line, backend.DefaultStyle(), inner)
	}
	hint := "esc to dismiss"
	buf.SetString(box.X+box.Width-len(hint)-2, box.Y+box.Height-1, hint, backend.StyleMuted, box)
	return nil
}

var spinner = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Loading covers its area with a spinner until it is popped. It never handles
// events.
type Loading struct {
	frame int
}

func (l *Loading) Placement() runtime.Constraint { return runtime.Fill(1) }
func (l *Loading) ZIndex() int                   { return ZLoading }

func (l *Loading) Dispatch(events.Event, *runtime.Buffer, runtime.Rect) (Broadcast, error) {
	return Ignore(), nil
}

func (l *Loading) Draw(buf *runtime.Buffer, area runtime.Rect) error {
	buf.Fill(area, ' ', backend.DefaultStyle())
	text := string(spinner[l.frame%len(spinner)]) + " Loading..."
	l.frame++
	box := area.Centered(len([]rune(text)), 1)
	buf.SetString(box.X, box.Y, text, backend.StyleTitle, area)
	return nil
}
