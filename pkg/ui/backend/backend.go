// Package backend defines the terminal surface a dashboard session renders to.
// The tcell implementation drives a remote or local terminal; the simulation
// implementation is used for frame assertions in tests.
package backend

// Backend is the terminal abstraction layer. Input does not flow through the
// backend: sessions decode their own input stream.
type Backend interface {
	// Init enters the alternate screen and prepares the terminal.
	Init() error

	// Fini restores the terminal state. The backend cannot be reused.
	Fini()

	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// SetContent sets a cell at position (x, y) with the given rune and style.
	SetContent(x, y int, mainc rune, comb []rune, style Style)

	// Show synchronizes the internal buffer to the terminal.
	Show()

	// Clear clears the screen.
	Clear()

	// HideCursor hides the terminal cursor.
	HideCursor()

	// SetCursorPos moves the cursor and makes it visible.
	SetCursorPos(x, y int)

	// Sync forces a full redraw on next Show().
	Sync()

	// Suspend hands the terminal back so another program can own it.
	Suspend() error

	// Resume takes the terminal back after Suspend.
	Resume() error
}

// RenderTarget is the subset of Backend used when flushing a frame.
type RenderTarget interface {
	Size() (width, height int)
	SetContent(x, y int, mainc rune, comb []rune, style Style)
}
