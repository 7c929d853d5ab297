package dashboard

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/odvcencio/kuberift/pkg/events"
)

// ErrClosed is returned by Send once the session has stopped receiving or
// the sender has been closed.
var ErrClosed = errors.New("dashboard: session closed")

// channel is an unbounded queue feeding one receiver. The receive side sees
// a closed channel once every Sender reference has been released and the
// queue has drained.
type channel struct {
	mu    sync.Mutex
	items []events.Event
	refs  int

	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	out      chan events.Event
}

func newChannel() (*Sender, *channel) {
	c := &channel{
		refs: 1,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan events.Event),
	}
	go c.pump()
	return &Sender{ch: c}, c
}

func (c *channel) pump() {
	defer close(c.out)
	for {
		c.mu.Lock()
		if len(c.items) == 0 {
			refs := c.refs
			c.mu.Unlock()
			if refs == 0 {
				return
			}
			select {
			case <-c.wake:
				continue
			case <-c.done:
				return
			}
		}
		ev := c.items[0]
		c.items[0] = nil
		c.items = c.items[1:]
		c.mu.Unlock()

		select {
		case c.out <- ev:
		case <-c.done:
			return
		}
	}
}

func (c *channel) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// receive returns the event stream.
func (c *channel) receive() <-chan events.Event {
	return c.out
}

// stop marks the receiver gone. Pending events are dropped.
func (c *channel) stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		c.items = nil
		c.mu.Unlock()
	})
}

// Sender is one producer reference to a session's event channel. Sends never
// block. The session's render loop stops when every Sender has been closed.
type Sender struct {
	ch     *channel
	closed atomic.Bool
}

// Send queues ev for the session.
func (s *Sender) Send(ev events.Event) error {
	if s.closed.Load() {
		return ErrClosed
	}
	c := s.ch
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	c.mu.Lock()
	c.items = append(c.items, ev)
	c.mu.Unlock()
	c.signal()
	return nil
}

// Clone returns a new reference to the same channel. Cloning a closed
// sender returns a closed sender.
func (s *Sender) Clone() *Sender {
	clone := &Sender{ch: s.ch}
	if s.closed.Load() {
		clone.closed.Store(true)
		return clone
	}
	s.ch.mu.Lock()
	s.ch.refs++
	s.ch.mu.Unlock()
	return clone
}

// Close releases this reference. It is safe to call more than once.
func (s *Sender) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.ch.mu.Lock()
	s.ch.refs--
	s.ch.mu.Unlock()
	s.ch.signal()
}

// Done is closed when the session stops receiving.
func (s *Sender) Done() <-chan struct{} {
	return s.ch.done
}
