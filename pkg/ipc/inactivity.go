package ipc

import (
	"sync"
	"time"

	"github.com/odvcencio/kuberift/pkg/dashboard"
	"github.com/odvcencio/kuberift/pkg/events"
)

// inactivityWatch ends a session with Shutdown once no client input or
// resize has arrived for timeout. A nil watch is disabled.
type inactivityWatch struct {
	timeout time.Duration
	timer   *time.Timer
	tx      *dashboard.Sender
	once    sync.Once
}

// watchInactivity starts the watch on its own reference to tx. A zero or
// negative timeout returns nil.
func watchInactivity(timeout time.Duration, tx *dashboard.Sender, onIdle func()) *inactivityWatch {
	if timeout <= 0 {
		return nil
	}
	w := &inactivityWatch{timeout: timeout, tx: tx.Clone()}
	w.timer = time.AfterFunc(timeout, func() {
		if onIdle != nil {
			onIdle()
		}
		_ = w.tx.Send(events.Shutdown{})
	})
	return w
}

func (w *inactivityWatch) touch() {
	if w == nil {
		return
	}
	w.timer.Reset(w.timeout)
}

// stop releases the watch's sender so the session can finish draining.
func (w *inactivityWatch) stop() {
	if w == nil {
		return
	}
	w.once.Do(func() {
		w.timer.Stop()
		w.tx.Close()
	})
}
