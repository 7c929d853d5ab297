package termio

import (
	"context"
	"io"
	"sync"
)

// Stdio is a Writer over a local stream such as os.Stdout. Both writer views
// are synchronous.
type Stdio struct {
	mu     sync.Mutex
	out    io.Writer
	closed bool
}

// NewStdio wraps out.
func NewStdio(out io.Writer) *Stdio {
	return &Stdio{out: out}
}

func (s *Stdio) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	return s.out.Write(p)
}

func (s *Stdio) Blocking() io.Writer    { return s }
func (s *Stdio) NonBlocking() io.Writer { return s }

// Shutdown writes message on its own line. Further writes fail.
func (s *Stdio) Shutdown(_ context.Context, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if message == "" {
		return nil
	}
	_, err := io.WriteString(s.out, message+"\r\n")
	return err
}
