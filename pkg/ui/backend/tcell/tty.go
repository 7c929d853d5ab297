package tcell

import (
	"io"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/odvcencio/kuberift/pkg/termio"
)

// Tty adapts a session's output writer and shared window size to tcell's Tty
// contract. Input never arrives through it: Read blocks until tcell drains the
// tty or it is closed, since sessions decode their own input stream.
type Tty struct {
	out  termio.Writer
	size *termio.WindowSize

	mu          sync.Mutex
	drain       chan struct{}
	unsubscribe func()

	closed    chan struct{}
	closeOnce sync.Once
}

// NewTty creates a Tty writing frames to out.Blocking().
func NewTty(out termio.Writer, size *termio.WindowSize) *Tty {
	return &Tty{
		out:    out,
		size:   size,
		closed: make(chan struct{}),
	}
}

// Start arms a fresh drain channel. tcell calls it on Init and Resume.
func (t *Tty) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.drain = make(chan struct{})
	return nil
}

// Drain wakes a blocked Read so tcell's input goroutine can exit.
func (t *Tty) Drain() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.drain != nil {
		select {
		case <-t.drain:
		default:
			close(t.drain)
		}
	}
	return nil
}

func (t *Tty) Stop() error {
	return nil
}

func (t *Tty) NotifyResize(cb func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}
	if cb != nil {
		t.unsubscribe = t.size.OnChange(cb)
	}
}

func (t *Tty) WindowSize() (tcell.WindowSize, error) {
	w, h := t.size.Get()
	return tcell.WindowSize{Width: w, Height: h}, nil
}

func (t *Tty) Read(p []byte) (int, error) {
	t.mu.Lock()
	drain := t.drain
	t.mu.Unlock()

	select {
	case <-drain:
		return 0, nil
	case <-t.closed:
		return 0, io.EOF
	}
}

func (t *Tty) Write(p []byte) (int, error) {
	return t.out.Blocking().Write(p)
}

// Close unblocks readers. The underlying writer stays open; the session owns it.
func (t *Tty) Close() error {
	t.closeOnce.Do(func() { close(t.closed) })
	return nil
}

var _ tcell.Tty = (*Tty)(nil)
