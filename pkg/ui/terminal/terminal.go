// Package terminal decodes raw terminal input into key events.
package terminal

import "fmt"

// KeyEvent represents a single decoded key press.
type KeyEvent struct {
	Key  Key
	Rune rune
	Alt  bool
}

// Is reports whether the event is the given special key.
func (k KeyEvent) Is(key Key) bool {
	return k.Key == key
}

// IsRune reports whether the event is the printable rune r without modifiers.
func (k KeyEvent) IsRune(r rune) bool {
	return k.Key == KeyRune && k.Rune == r && !k.Alt
}

func (k KeyEvent) String() string {
	prefix := ""
	if k.Alt {
		prefix = "alt+"
	}
	switch k.Key {
	case KeyRune:
		return prefix + string(k.Rune)
	case KeyCtrl:
		return prefix + "ctrl+" + string(k.Rune)
	default:
		return prefix + k.Key.String()
	}
}

// Key represents special keys.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // Regular character
	KeyEnter
	KeyBackspace
	KeyTab
	KeyBackTab
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyDelete
	KeyInsert
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyCtrl  // Control chord; Rune holds the lowercase letter
	KeyCtrlC // End-of-text (0x03)
)

var keyNames = map[Key]string{
	KeyNone:      "none",
	KeyRune:      "rune",
	KeyEnter:     "enter",
	KeyBackspace: "backspace",
	KeyTab:       "tab",
	KeyBackTab:   "backtab",
	KeyEscape:    "esc",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "pgup",
	KeyPageDown:  "pgdn",
	KeyDelete:    "delete",
	KeyInsert:    "insert",
	KeyCtrl:      "ctrl",
	KeyCtrlC:     "ctrl+c",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	if k >= KeyF1 && k <= KeyF12 {
		return fmt.Sprintf("f%d", int(k-KeyF1)+1)
	}
	return fmt.Sprintf("key(%d)", int(k))
}
