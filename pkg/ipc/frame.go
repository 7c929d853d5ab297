package ipc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Frame types exchanged over /ws/dashboard. Clients send input, resize and
// close; the server sends data, exit and error.
const (
	FrameInput  = "input"
	FrameResize = "resize"
	FrameClose  = "close"
	FrameData   = "data"
	FrameExit   = "exit"
	FrameError  = "error"
)

// Frame is one JSON websocket message. Data is base64 for input and data
// frames and plain text for exit and error frames.
type Frame struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
	Rows int    `json:"rows,omitempty"`
	Cols int    `json:"cols,omitempty"`
}

// DataFrame wraps terminal bytes of the given type.
func DataFrame(typ string, p []byte) Frame {
	return Frame{Type: typ, Data: base64.StdEncoding.EncodeToString(p)}
}

// Bytes decodes the base64 payload.
func (f Frame) Bytes() ([]byte, error) {
	if f.Data == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(f.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s frame: %w", f.Type, err)
	}
	return b, nil
}

func (f Frame) marshal() []byte {
	payload, _ := json.Marshal(f)
	return payload
}

func decodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}

func marshalError(err error) []byte {
	return Frame{Type: FrameError, Data: err.Error()}.marshal()
}
