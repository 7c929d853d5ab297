// Package tcell provides a Backend implementation using tcell.
package tcell

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/odvcencio/kuberift/pkg/termio"
	"github.com/odvcencio/kuberift/pkg/ui/backend"
)

// DefaultTerm is used when the client did not report a terminal type or the
// reported one is unknown.
const DefaultTerm = "xterm-256color"

// Backend implements backend.Backend using tcell.
type Backend struct {
	screen tcell.Screen
}

// New creates a backend that renders through out using the terminfo entry for
// term.
func New(out termio.Writer, size *termio.WindowSize, term string) (*Backend, error) {
	if term == "" {
		term = DefaultTerm
	}
	ti, err := tcell.LookupTerminfo(term)
	if err != nil {
		ti, err = tcell.LookupTerminfo(DefaultTerm)
		if err != nil {
			return nil, fmt.Errorf("lookup terminfo: %w", err)
		}
	}
	screen, err := tcell.NewTerminfoScreenFromTtyTerminfo(NewTty(out, size), ti)
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	return &Backend{screen: screen}, nil
}

// NewWithScreen creates a backend with an existing tcell screen (for testing).
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{screen: screen}
}

func (b *Backend) Init() error {
	if err := b.screen.Init(); err != nil {
		return err
	}
	b.screen.HideCursor()
	return nil
}

func (b *Backend) Fini() {
	b.screen.Fini()
}

func (b *Backend) Size() (width, height int) {
	return b.screen.Size()
}

func (b *Backend) SetContent(x, y int, mainc rune, comb []rune, style backend.Style) {
	b.screen.SetContent(x, y, mainc, comb, convertStyle(style))
}

func (b *Backend) Show() {
	b.screen.Show()
}

func (b *Backend) Clear() {
	b.screen.Clear()
}

func (b *Backend) HideCursor() {
	b.screen.HideCursor()
}

func (b *Backend) SetCursorPos(x, y int) {
	b.screen.ShowCursor(x, y)
}

func (b *Backend) Sync() {
	b.screen.Sync()
}

// Suspend leaves the alternate screen and stops tcell's terminal goroutines.
func (b *Backend) Suspend() error {
	return b.screen.Suspend()
}

// Resume re-enters the alternate screen. Callers should Sync afterwards.
func (b *Backend) Resume() error {
	return b.screen.Resume()
}

// convertStyle converts backend.Style to tcell.Style.
func convertStyle(s backend.Style) tcell.Style {
	fg, bg, attrs := s.Decompose()
	style := tcell.StyleDefault.
		Foreground(convertColor(fg)).
		Background(convertColor(bg))

	return style.
		Bold(attrs&backend.AttrBold != 0).
		Italic(attrs&backend.AttrItalic != 0).
		Underline(attrs&backend.AttrUnderline != 0).
		Dim(attrs&backend.AttrDim != 0).
		Reverse(attrs&backend.AttrReverse != 0)
}

// convertColor converts backend.Color to tcell.Color.
func convertColor(c backend.Color) tcell.Color {
	if c == backend.ColorDefault {
		return tcell.ColorDefault
	}
	if c.IsRGB() {
		r, g, b := c.RGB()
		return tcell.NewRGBColor(int32(r), int32(g), int32(b))
	}
	return tcell.PaletteColor(int(c))
}

var _ backend.Backend = (*Backend)(nil)
