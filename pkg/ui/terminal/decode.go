package terminal

import "unicode/utf8"

// Token is one decoded key together with the bytes it was decoded from.
type Token struct {
	Key KeyEvent
	Raw []byte
}

const esc = 0x1b

// Decode splits an input chunk into key tokens. Concatenating the Raw slices
// of the result reproduces the chunk exactly. A chunk that is a lone ESC byte
// decodes as KeyEscape; terminals deliver escape sequences in a single write.
func Decode(chunk []byte) []Token {
	var out []Token
	for len(chunk) > 0 {
		key, n := decodeOne(chunk)
		out = append(out, Token{Key: key, Raw: chunk[:n:n]})
		chunk = chunk[n:]
	}
	return out
}

func decodeOne(b []byte) (KeyEvent, int) {
	c := b[0]
	switch {
	case c == esc:
		return decodeEscape(b)
	case c == '\r' || c == '\n':
		return KeyEvent{Key: KeyEnter}, 1
	case c == '\t':
		return KeyEvent{Key: KeyTab}, 1
	case c == 0x7f || c == 0x08:
		return KeyEvent{Key: KeyBackspace}, 1
	case c == 0x03:
		return KeyEvent{Key: KeyCtrlC}, 1
	case c == 0x00:
		return KeyEvent{Key: KeyCtrl, Rune: ' '}, 1
	case c < 0x20:
		return KeyEvent{Key: KeyCtrl, Rune: rune('a' + c - 1)}, 1
	case c < utf8.RuneSelf:
		return KeyEvent{Key: KeyRune, Rune: rune(c)}, 1
	}
	r, n := utf8.DecodeRune(b)
	if r == utf8.RuneError {
		return KeyEvent{Key: KeyNone, Rune: r}, max(n, 1)
	}
	return KeyEvent{Key: KeyRune, Rune: r}, n
}

func decodeEscape(b []byte) (KeyEvent, int) {
	if len(b) == 1 {
		return KeyEvent{Key: KeyEscape}, 1
	}
	switch b[1] {
	case '[':
		return decodeCSI(b)
	case 'O':
		if len(b) < 3 {
			return KeyAlt('O'), 2
		}
		if k, ok := ss3Keys[b[2]]; ok {
			return KeyEvent{Key: k}, 3
		}
		return KeyEvent{Key: KeyNone}, 3
	case esc:
		return KeyEvent{Key: KeyEscape}, 1
	}
	inner, n := decodeOne(b[1:])
	inner.Alt = true
	return inner, n + 1
}

// KeyAlt builds an alt-modified rune event.
func KeyAlt(r rune) KeyEvent {
	return KeyEvent{Key: KeyRune, Rune: r, Alt: true}
}

var ss3Keys = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
	'P': KeyF1,
	'Q': KeyF2,
	'R': KeyF3,
	'S': KeyF4,
}

var csiFinal = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
	'Z': KeyBackTab,
}

var csiTilde = map[int]Key{
	1:  KeyHome,
	2:  KeyInsert,
	3:  KeyDelete,
	4:  KeyEnd,
	5:  KeyPageUp,
	6:  KeyPageDown,
	7:  KeyHome,
	8:  KeyEnd,
	11: KeyF1,
	12: KeyF2,
	13: KeyF3,
	14: KeyF4,
	15: KeyF5,
	17: KeyF6,
	18: KeyF7,
	19: KeyF8,
	20: KeyF9,
	21: KeyF10,
	23: KeyF11,
	24: KeyF12,
}

// decodeCSI handles ESC [ params final. Parameters after the first are
// modifiers and are ignored.
func decodeCSI(b []byte) (KeyEvent, int) {
	i := 2
	param, sawParam := 0, false
	firstDone := false
	for i < len(b) {
		c := b[i]
		switch {
		case c >= '0' && c <= '9':
			if !firstDone {
				param = param*10 + int(c-'0')
				sawParam = true
			}
		case c == ';':
			firstDone = true
		case c >= 0x40 && c <= 0x7e:
			n := i + 1
			if c == '~' {
				if k, ok := csiTilde[param]; ok && sawParam {
					return KeyEvent{Key: k}, n
				}
				return KeyEvent{Key: KeyNone}, n
			}
			if k, ok := csiFinal[c]; ok {
				return KeyEvent{Key: k}, n
			}
			return KeyEvent{Key: KeyNone}, n
		}
		i++
	}
	// Unterminated sequence: treat the rest of the chunk as one unknown key.
	return KeyEvent{Key: KeyNone}, len(b)
}
