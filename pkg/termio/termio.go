// Package termio describes the output side of a dashboard session and the
// terminal dimensions shared between the render loop and the terminal driver.
package termio

import (
	"context"
	"io"
	"sync"
)

// Writer is the output boundary of a session.
type Writer interface {
	// Blocking returns a writer whose writes complete only once the bytes
	// were handed to the transport. The render backend writes frames here.
	Blocking() io.Writer

	// NonBlocking returns a writer whose writes are queued. Raw passthrough
	// output is written here.
	NonBlocking() io.Writer

	// Shutdown flushes pending output, delivers a final message and closes
	// the transport.
	Shutdown(ctx context.Context, message string) error
}

// WindowSize is the terminal size in cells. It is shared between the goroutine
// that applies resize events and the terminal driver that reads it.
type WindowSize struct {
	mu        sync.Mutex
	width     int
	height    int
	listeners map[int]func()
	nextID    int
}

// NewWindowSize returns a WindowSize with the given initial dimensions.
func NewWindowSize(width, height int) *WindowSize {
	return &WindowSize{width: width, height: height, listeners: make(map[int]func())}
}

// Get returns the current dimensions.
func (w *WindowSize) Get() (width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// Set stores new dimensions and notifies listeners when they changed.
func (w *WindowSize) Set(width, height int) {
	w.mu.Lock()
	if w.width == width && w.height == height {
		w.mu.Unlock()
		return
	}
	w.width, w.height = width, height
	fns := make([]func(), 0, len(w.listeners))
	for _, fn := range w.listeners {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// OnChange registers fn to run after every size change. The returned func
// removes the registration.
func (w *WindowSize) OnChange(fn func()) (cancel func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = fn
	return func() {
		w.mu.Lock()
		delete(w.listeners, id)
		w.mu.Unlock()
	}
}
