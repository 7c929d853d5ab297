// Package dashboard runs interactive terminal sessions: it decodes a session's
// input into events, drives the widget tree at a fixed frame rate and hands
// the terminal over to raw widgets on request.
package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	goruntime "runtime"
	"runtime/debug"
	"time"

	kerrors "github.com/odvcencio/kuberift/pkg/errors"
	"github.com/odvcencio/kuberift/pkg/logging"
	"github.com/odvcencio/kuberift/pkg/termio"
	"github.com/odvcencio/kuberift/pkg/ui/backend"
	"github.com/odvcencio/kuberift/pkg/ui/backend/tcell"
	"github.com/odvcencio/kuberift/pkg/ui/runtime"
	"github.com/odvcencio/kuberift/pkg/ui/widgets"
)

const (
	// DefaultFPS is the frame rate when none is configured.
	DefaultFPS = 10

	shutdownTimeout = 5 * time.Second
	exitMessage     = "exiting..."
)

// BackendFactory creates the terminal surface of a session. Frames must be
// written to out.Blocking(); size is the shared terminal size.
type BackendFactory func(out termio.Writer, size *termio.WindowSize) (backend.Backend, error)

// TcellBackend renders with tcell using the terminfo entry for term.
func TcellBackend(term string) BackendFactory {
	return func(out termio.Writer, size *termio.WindowSize) (backend.Backend, error) {
		return tcell.New(out, size, term)
	}
}

// Config describes one dashboard session.
type Config struct {
	// Root builds the widget tree. It is called on the render goroutine. If
	// the widget implements io.Closer it is closed when the session ends.
	Root func() widgets.Widget

	Backend BackendFactory
	FPS     int

	// Initial terminal size in cells.
	Width  int
	Height int

	Logger *logging.Logger
}

// Dashboard is a single session. It is started once.
type Dashboard struct {
	cfg Config
}

// New creates a dashboard, filling in defaults.
func New(cfg Config) *Dashboard {
	if cfg.Backend == nil {
		cfg.Backend = TcellBackend("")
	}
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 80, 24
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return &Dashboard{cfg: cfg}
}

// Interval is the time between render ticks.
func (d *Dashboard) Interval() time.Duration {
	return time.Second / time.Duration(d.cfg.FPS)
}

// Start runs the session in the background and returns a Sender for
// injecting events such as Resize.
//
// Two goroutines are started and neither is joined: one decodes input into
// events, the other renders on its own OS thread. They stop when input hits
// EOF and every Sender has been closed, when a Shutdown event is sent, or
// when the widget tree exits. input may be nil when every event is delivered
// through the Sender.
func (d *Dashboard) Start(input io.Reader, out termio.Writer) (*Sender, error) {
	if d.cfg.Root == nil {
		return nil, kerrors.New(kerrors.ErrCodeInternal, "dashboard has no root widget")
	}

	size := termio.NewWindowSize(d.cfg.Width, d.cfg.Height)
	be, err := d.cfg.Backend(out, size)
	if err != nil {
		return nil, kerrors.Wrap(err, kerrors.ErrCodeRender, "create terminal backend")
	}
	if err := be.Init(); err != nil {
		return nil, kerrors.Wrap(err, kerrors.ErrCodeRender, "initialize terminal backend")
	}

	tx, ch := newChannel()
	if input != nil {
		go forward(input, tx.Clone(), d.cfg.Logger)
	}
	go d.render(ch, be, size, out)
	return tx, nil
}

func (d *Dashboard) render(ch *channel, be backend.Backend, size *termio.WindowSize, out termio.Writer) {
	goruntime.LockOSThread()
	defer goruntime.UnlockOSThread()

	threadStarted()
	defer threadStopped()
	defer ch.stop()

	logger := d.cfg.Logger
	defer func() {
		if r := recover(); r != nil {
			logger.Error("dashboard panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			be.Fini()
			_ = shutdown(out, "exiting: internal error")
		}
	}()

	if err := d.run(ch, be, size, out); err != nil {
		logger.Error("dashboard failed", slog.String("error", err.Error()))
	}
}

func (d *Dashboard) run(ch *channel, be backend.Backend, size *termio.WindowSize, out termio.Writer) (err error) {
	root := d.cfg.Root()
	// Closing the tree stops its stores, also while a panic unwinds.
	defer func() {
		err = errors.Join(err, widgets.Close(root))
	}()
	w, h := be.Size()
	l := &loop{
		backend:  be,
		buf:      runtime.NewBuffer(w, h),
		size:     size,
		events:   ch.receive(),
		out:      out,
		interval: d.Interval(),
		logger:   d.cfg.Logger,
	}

	runErr := l.run(context.Background(), root)

	be.Clear()
	be.SetCursorPos(0, 0)
	be.Show()
	be.Fini()

	message := exitMessage
	if runErr != nil {
		message = "exiting: " + kerrors.UserMessage(runErr)
	}
	return errors.Join(runErr, shutdown(out, message))
}

func shutdown(out termio.Writer, message string) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := out.Shutdown(ctx, message); err != nil {
		return kerrors.Wrap(err, kerrors.ErrCodeTransport, "shutdown output")
	}
	return nil
}
