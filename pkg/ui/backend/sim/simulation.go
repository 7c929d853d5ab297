// Package sim provides a simulation backend for testing.
package sim

import (
	"strings"
	"sync"
	"sync/atomic"

	tcellv2 "github.com/gdamore/tcell/v2"

	"github.com/odvcencio/kuberift/pkg/ui/backend"
	"github.com/odvcencio/kuberift/pkg/ui/backend/tcell"
)

// Backend is a testable backend using tcell's simulation screen.
type Backend struct {
	*tcell.Backend
	screen tcellv2.SimulationScreen

	mu            sync.Mutex
	width, height int
	finiOnce      sync.Once

	suspends atomic.Int32
	resumes  atomic.Int32
	finis    atomic.Int32
}

// New creates a new simulation backend with the given dimensions.
func New(width, height int) *Backend {
	screen := tcellv2.NewSimulationScreen("UTF-8")
	return &Backend{
		Backend: tcell.NewWithScreen(screen),
		screen:  screen,
		width:   width,
		height:  height,
	}
}

// Init initializes the screen at the configured size.
func (s *Backend) Init() error {
	if err := s.Backend.Init(); err != nil {
		return err
	}
	s.mu.Lock()
	w, h := s.width, s.height
	s.mu.Unlock()
	s.screen.SetSize(w, h)
	return nil
}

// Fini may be called more than once.
func (s *Backend) Fini() {
	s.finiOnce.Do(func() {
		s.finis.Add(1)
		s.Backend.Fini()
	})
}

func (s *Backend) Suspend() error {
	s.suspends.Add(1)
	return s.Backend.Suspend()
}

func (s *Backend) Resume() error {
	s.resumes.Add(1)
	return s.Backend.Resume()
}

// Suspends returns how many times Suspend was called.
func (s *Backend) Suspends() int { return int(s.suspends.Load()) }

// Resumes returns how many times Resume was called.
func (s *Backend) Resumes() int { return int(s.resumes.Load()) }

// Finalized reports whether Fini was called.
func (s *Backend) Finalized() bool { return s.finis.Load() > 0 }

// Resize changes the simulation screen size.
func (s *Backend) Resize(width, height int) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
	s.screen.SetSize(width, height)
}

// Capture captures the current screen content as a string.
func (s *Backend) Capture() string {
	w, h := s.screen.Size()
	lines := make([]string, 0, h)
	for y := 0; y < h; y++ {
		lines = append(lines, s.CaptureRegion(0, y, w, 1))
	}
	return strings.Join(lines, "\n")
}

// CaptureRegion captures a rectangular region of the screen.
func (s *Backend) CaptureRegion(x, y, w, h int) string {
	var lines []string
	for row := y; row < y+h; row++ {
		var line strings.Builder
		for col := x; col < x+w; col++ {
			mainc, _, _, width := s.screen.GetContent(col, row)
			if mainc == 0 {
				mainc = ' '
			}
			line.WriteRune(mainc)
			if width == 2 {
				col++
			}
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// FindText searches for text on the screen and returns its position.
func (s *Backend) FindText(text string) (x, y int) {
	for row, line := range strings.Split(s.Capture(), "\n") {
		if col := strings.Index(line, text); col >= 0 {
			return col, row
		}
	}
	return -1, -1
}

// ContainsText returns true if the text appears anywhere on screen.
func (s *Backend) ContainsText(text string) bool {
	x, _ := s.FindText(text)
	return x >= 0
}

var _ backend.Backend = (*Backend)(nil)
