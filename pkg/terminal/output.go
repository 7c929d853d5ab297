// Package terminal writes the styled line output of the kuberift CLI:
// status messages, the session table and the connect spinner. The dashboard
// itself draws through pkg/ui.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/odvcencio/kuberift/pkg/session"
)

// Writer provides styled terminal output.
type Writer struct {
	out io.Writer
	mu  sync.Mutex

	errorStyle   lipgloss.Style
	warnStyle    lipgloss.Style
	successStyle lipgloss.Style
	dimStyle     lipgloss.Style
	headerStyle  lipgloss.Style
}

// New creates a Writer on stderr, where the CLI reports status.
func New() *Writer {
	return NewWithOutput(os.Stderr)
}

// NewWithOutput creates a Writer whose color profile is detected from out.
func NewWithOutput(out io.Writer) *Writer {
	return newWriter(out, lipgloss.NewRenderer(out))
}

// NewPlain creates a Writer that never emits colors.
func NewPlain(out io.Writer) *Writer {
	r := lipgloss.NewRenderer(out)
	r.SetColorProfile(termenv.Ascii)
	return newWriter(out, r)
}

func newWriter(out io.Writer, r *lipgloss.Renderer) *Writer {
	return &Writer{
		out: out,
		errorStyle: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D00000", Dark: "#FF5555"}).
			Bold(true),
		warnStyle: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFAA00"}),
		successStyle: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#008000", Dark: "#55FF55"}),
		dimStyle: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
		headerStyle: r.NewStyle().Bold(true),
	}
}

// Error prints an error message in red.
func (w *Writer) Error(format string, args ...any) {
	w.line(w.errorStyle, "error: ", format, args...)
}

// Warn prints a warning message in yellow.
func (w *Writer) Warn(format string, args ...any) {
	w.line(w.warnStyle, "warning: ", format, args...)
}

// Success prints a success message in green.
func (w *Writer) Success(format string, args ...any) {
	w.line(w.successStyle, "✓ ", format, args...)
}

// Dim prints secondary text.
func (w *Writer) Dim(format string, args ...any) {
	w.line(w.dimStyle, "", format, args...)
}

func (w *Writer) line(style lipgloss.Style, prefix, format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, style.Render(prefix+fmt.Sprintf(format, args...)))
}

// Sessions prints live sessions as a table, oldest first.
func (w *Writer) Sessions(infos []session.Info, now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(infos) == 0 {
		fmt.Fprintln(w.out, w.dimStyle.Render("no active sessions"))
		return
	}

	header := []string{"ID", "USER", "REMOTE", "SIZE", "AGE"}
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.ID,
			info.User,
			info.Remote,
			fmt.Sprintf("%dx%d", info.Width, info.Height),
			now.Sub(info.StartedAt).Round(time.Second).String(),
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	fmt.Fprintln(w.out, w.headerStyle.Render(pad(header, widths)))
	for _, row := range rows {
		fmt.Fprintln(w.out, pad(row, widths))
	}
}

func pad(cells []string, widths []int) string {
	var sb strings.Builder
	for i, cell := range cells {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(cell)
		if i < len(cells)-1 {
			sb.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
		}
	}
	return sb.String()
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
