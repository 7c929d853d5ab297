package ipc

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

const wsWriteTimeout = 10 * time.Second

var errWriterClosed = errors.New("session output closed")

// wsWriter is the output side of a websocket session. Every write becomes a
// data frame; frames leave in the order they were written regardless of
// which view wrote them.
type wsWriter struct {
	conn *websocket.Conn

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []outbound
	closed bool
	err    error

	loopDone chan struct{}
	shutOnce sync.Once
	shutErr  error
	done     chan struct{}
}

type outbound struct {
	payload []byte
	ack     chan error
}

func newWSWriter(conn *websocket.Conn) *wsWriter {
	w := &wsWriter{
		conn:     conn,
		loopDone: make(chan struct{}),
		done:     make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	go w.loop()
	return w
}

func (w *wsWriter) loop() {
	defer close(w.loopDone)
	for {
		w.mu.Lock()
		for len(w.queue) == 0 && !w.closed {
			w.cond.Wait()
		}
		if len(w.queue) == 0 {
			w.mu.Unlock()
			return
		}
		item := w.queue[0]
		w.queue[0] = outbound{}
		w.queue = w.queue[1:]
		err := w.err
		w.mu.Unlock()

		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), wsWriteTimeout)
			err = w.conn.Write(ctx, websocket.MessageText, item.payload)
			cancel()
			if err != nil {
				w.mu.Lock()
				if w.err == nil {
					w.err = err
				}
				w.mu.Unlock()
			}
		}
		if item.ack != nil {
			item.ack <- err
		}
	}
}

func (w *wsWriter) enqueue(payload []byte, wait bool) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return errWriterClosed
	}
	if w.err != nil {
		err := w.err
		w.mu.Unlock()
		return err
	}
	var ack chan error
	if wait {
		ack = make(chan error, 1)
	}
	w.queue = append(w.queue, outbound{payload: payload, ack: ack})
	w.cond.Signal()
	w.mu.Unlock()

	if ack == nil {
		return nil
	}
	return <-ack
}

type frameWriter struct {
	w    *wsWriter
	wait bool
}

func (f frameWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := f.w.enqueue(DataFrame(FrameData, p).marshal(), f.wait); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsWriter) Blocking() io.Writer    { return frameWriter{w: w, wait: true} }
func (w *wsWriter) NonBlocking() io.Writer { return frameWriter{w: w} }

// Shutdown flushes queued frames, sends an exit frame carrying message and
// closes the connection.
func (w *wsWriter) Shutdown(ctx context.Context, message string) error {
	w.shutOnce.Do(func() {
		sent := make(chan error, 1)
		go func() {
			sent <- w.enqueue(Frame{Type: FrameExit, Data: message}.marshal(), true)
		}()
		select {
		case err := <-sent:
			w.shutErr = err
		case <-ctx.Done():
			w.shutErr = ctx.Err()
		}

		w.mu.Lock()
		w.closed = true
		w.cond.Broadcast()
		w.mu.Unlock()

		status, reason := websocket.StatusNormalClosure, "session ended"
		if w.shutErr != nil {
			status, reason = websocket.StatusInternalError, "output failed"
		} else {
			select {
			case <-w.loopDone:
			case <-ctx.Done():
			}
		}
		close(w.done)
		_ = w.conn.Close(status, reason)
	})
	return w.shutErr
}

// Done is closed once Shutdown has delivered the exit frame, just before
// the connection is closed.
func (w *wsWriter) Done() <-chan struct{} {
	return w.done
}

// abort drops pending output and closes the connection. It is used when the
// session outlives its client.
func (w *wsWriter) abort(reason string) {
	w.mu.Lock()
	w.closed = true
	if w.err == nil {
		w.err = errWriterClosed
	}
	w.cond.Broadcast()
	w.mu.Unlock()
	_ = w.conn.Close(websocket.StatusGoingAway, reason)
}
