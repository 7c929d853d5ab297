// Package events defines the messages that flow from a session's input side
// into its render loop.
package events

import (
	"fmt"

	"github.com/odvcencio/kuberift/pkg/ui/terminal"
)

// Event is a closed set of messages understood by the dashboard.
type Event interface {
	isEvent()
}

// Render is a timer tick requesting a redraw.
type Render struct{}

// Resize reports new terminal dimensions in cells.
type Resize struct {
	Width  int
	Height int
}

// Keypress is a decoded key without its source bytes.
type Keypress struct {
	terminal.KeyEvent
}

// Input is a chunk of raw terminal bytes together with the key they decode to.
// Raw widgets forward Raw untouched; UI widgets look at Key.
type Input struct {
	Key terminal.KeyEvent
	Raw []byte
}

// Finished reports that a raw takeover has completed. Err is nil on a clean exit.
type Finished struct {
	Err error
}

// Tunnel carries the outcome of a background operation up to the root widget.
type Tunnel struct {
	Name string
	Err  error
}

// Shutdown asks the render loop to stop.
type Shutdown struct{}

func (Render) isEvent()   {}
func (Resize) isEvent()   {}
func (Keypress) isEvent() {}
func (Input) isEvent()    {}
func (Finished) isEvent() {}
func (Tunnel) isEvent()   {}
func (Shutdown) isEvent() {}

// KeyOf extracts the key carried by an event, if any.
func KeyOf(ev Event) (terminal.KeyEvent, bool) {
	switch e := ev.(type) {
	case Keypress:
		return e.KeyEvent, true
	case Input:
		return e.Key, true
	}
	return terminal.KeyEvent{}, false
}

// Name is a short label used in logs and the debug panel.
func Name(ev Event) string {
	switch e := ev.(type) {
	case Render:
		return "render"
	case Resize:
		return fmt.Sprintf("resize(%dx%d)", e.Width, e.Height)
	case Keypress:
		return "key(" + e.String() + ")"
	case Input:
		return "input(" + e.Key.String() + ")"
	case Finished:
		if e.Err != nil {
			return "finished(error)"
		}
		return "finished"
	case Tunnel:
		return "tunnel(" + e.Name + ")"
	case Shutdown:
		return "shutdown"
	case nil:
		return "nil"
	}
	return fmt.Sprintf("%T", ev)
}

// FromChunk decodes a chunk of input bytes into Input events, one per key.
func FromChunk(chunk []byte) []Event {
	tokens := terminal.Decode(chunk)
	out := make([]Event, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, Input{Key: tok.Key, Raw: tok.Raw})
	}
	return out
}
