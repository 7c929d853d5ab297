package dashboard

import (
	"context"
	"fmt"
	"time"

	kerrors "github.com/odvcencio/kuberift/pkg/errors"
	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/logging"
	"github.com/odvcencio/kuberift/pkg/termio"
	"github.com/odvcencio/kuberift/pkg/ui/backend"
	"github.com/odvcencio/kuberift/pkg/ui/runtime"
	"github.com/odvcencio/kuberift/pkg/ui/terminal"
	"github.com/odvcencio/kuberift/pkg/ui/widgets"
)

// loop is the render loop of one session. It is only ever touched by the
// session's render goroutine.
type loop struct {
	backend  backend.Backend
	buf      *runtime.Buffer
	size     *termio.WindowSize
	events   <-chan events.Event
	out      termio.Writer
	interval time.Duration
	logger   *logging.Logger
}

// run drives root until it exits, a Shutdown arrives, or the event channel
// closes.
func (l *loop) run(ctx context.Context, root widgets.Widget) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	if err := l.draw(root); err != nil {
		return err
	}

	var mode Mode = UI{Widget: root}
	for {
		var (
			b   widgets.Broadcast
			err error
		)
		switch m := mode.(type) {
		case UI:
			var ev events.Event
			select {
			case next, ok := <-l.events:
				if !ok {
					return nil
				}
				ev = next
			case <-ticker.C:
				ev = events.Render{}
			case <-ctx.Done():
				return nil
			}
			if _, ok := ev.(events.Shutdown); ok {
				return nil
			}
			b, err = l.step(m.Widget, ev)

		case Raw:
			rawErr, stop := l.runRaw(ctx, m.Raw)
			ui := m.Resume()
			mode = ui
			if stop {
				return nil
			}
			b, err = l.step(ui.Widget, events.Finished{Err: rawErr})
		}
		if err != nil {
			return err
		}

		switch b.Kind {
		case widgets.Exited:
			return nil
		case widgets.RawTakeover:
			if b.Raw != nil {
				mode = mode.(UI).EnterRaw(b.Raw)
			}
		}
	}
}

// step dispatches ev to w and draws a frame. Render ticks are only drawn.
func (l *loop) step(w widgets.Widget, ev events.Event) (widgets.Broadcast, error) {
	if rs, ok := ev.(events.Resize); ok {
		l.resize(rs)
	}

	b := widgets.Ignore()
	if _, ok := ev.(events.Render); !ok {
		if key, ok := events.KeyOf(ev); ok && key.Is(terminal.KeyCtrlC) {
			return widgets.Exit(), nil
		}
		var err error
		b, err = w.Dispatch(ev, l.buf, l.buf.Area())
		if err != nil {
			return b, kerrors.Wrap(err, kerrors.ErrCodeRender, "dispatch").WithContext("event", events.Name(ev))
		}
	}

	if err := l.draw(w); err != nil {
		return b, err
	}
	return b, nil
}

func (l *loop) draw(w widgets.Widget) error {
	l.buf.Clear()
	if err := w.Draw(l.buf, l.buf.Area()); err != nil {
		return kerrors.Wrap(err, kerrors.ErrCodeRender, "draw")
	}
	l.buf.Flush(l.backend)
	l.backend.Show()
	return nil
}

func (l *loop) resize(rs events.Resize) {
	if rs.Width > 0 && rs.Height > 0 {
		l.size.Set(rs.Width, rs.Height)
	}
	l.refit()
}

// refit matches the frame buffer to the backend after its size may have
// changed or its screen was lost.
func (l *loop) refit() {
	l.backend.Sync()
	w, h := l.backend.Size()
	l.buf.Resize(w, h)
	l.buf.MarkAllDirty()
}

// runRaw hands the terminal to raw until it finishes. Events that arrive
// meanwhile are forwarded to it; a Shutdown or a closed channel cancels it
// and reports stop.
func (l *loop) runRaw(ctx context.Context, raw widgets.Raw) (rawErr error, stop bool) {
	kind := fmt.Sprintf("%T", raw)
	started := time.Now()
	l.logger.RawStarted(kind)

	l.backend.Clear()
	l.backend.SetCursorPos(0, 0)
	l.backend.Show()
	if err := l.backend.Suspend(); err != nil {
		return kerrors.Wrap(err, kerrors.ErrCodeRaw, "suspend terminal"), false
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	input := make(chan events.Event)
	done := make(chan error, 1)
	go func() {
		done <- raw.Start(ctx, input, l.out.NonBlocking())
	}()

	w, h := l.size.Get()
	pending := []events.Event{events.Resize{Width: w, Height: h}}

forward:
	for {
		var (
			send chan<- events.Event
			next events.Event
		)
		if len(pending) > 0 {
			send, next = input, pending[0]
		}

		select {
		case rawErr = <-done:
			break forward
		case send <- next:
			pending = pending[1:]
		case ev, ok := <-l.events:
			if !ok {
				stop = true
			} else {
				switch ev := ev.(type) {
				case events.Shutdown:
					stop = true
				case events.Resize:
					if ev.Width > 0 && ev.Height > 0 {
						l.size.Set(ev.Width, ev.Height)
					}
					pending = append(pending, ev)
				case events.Render:
				default:
					pending = append(pending, ev)
				}
			}
			if stop {
				cancel()
				rawErr = <-done
				break forward
			}
		}
	}
	close(input)

	recordRaw(rawErr)
	l.logger.RawFinished(kind, time.Since(started), rawErr)

	if err := l.backend.Resume(); err != nil && rawErr == nil {
		rawErr = kerrors.Wrap(err, kerrors.ErrCodeRaw, "resume terminal")
	}
	l.refit()
	return rawErr, stop
}
