package terminal

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerFrames are the default spinner animation frames.
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a one-line status while the CLI waits, for example on a
// websocket dial.
type Spinner struct {
	out     io.Writer
	message string
	style   lipgloss.Style

	mu      sync.Mutex
	current int
	started bool
	done    chan struct{}
	stopped sync.WaitGroup
	once    sync.Once
}

// NewSpinner creates a spinner writing to out.
func NewSpinner(out io.Writer, message string) *Spinner {
	return &Spinner{
		out:     out,
		message: message,
		done:    make(chan struct{}),
		style: lipgloss.NewRenderer(out).NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#5599FF"}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	s.stopped.Add(1)
	go s.run()
}

func (s *Spinner) run() {
	defer s.stopped.Done()
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			frame := SpinnerFrames[s.current%len(SpinnerFrames)]
			s.current++
			fmt.Fprintf(s.out, "\r%s %s", s.style.Render(frame), s.message)
			s.mu.Unlock()
		}
	}
}

// Stop ends the animation and clears the line of a started spinner. It is
// safe to call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.done)
		s.stopped.Wait()
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.started {
			fmt.Fprint(s.out, "\r\033[K")
		}
	})
}
