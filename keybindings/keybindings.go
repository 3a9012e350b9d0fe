package keybindings

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// KeyAction represents the action to take for a key press.
type KeyAction int

const (
	ActionNone KeyAction = iota
	ActionExit
	ActionInput
	ActionPaste
	ActionToggleFullscreen
)

// KeyResult contains the result of processing a key.
type KeyResult struct {
	Action KeyAction
	Data   []byte
}

// TranslateKey translates a GLFW key event to bytes for the child
// process. Plain printable characters arrive through the char
// callback, not here.
func TranslateKey(key glfw.Key, mods glfw.ModifierKey) KeyResult {
	ctrl := mods&glfw.ModControl != 0
	shift := mods&glfw.ModShift != 0

	if ctrl && shift && key == glfw.KeyQ {
		return KeyResult{Action: ActionExit}
	}

	if ctrl && shift && key == glfw.KeyV {
		return KeyResult{Action: ActionPaste}
	}

	// Arrow keys
	switch key {
	case glfw.KeyUp:
		return KeyResult{Action: ActionInput, Data: []byte("\x1b[A")}
	case glfw.KeyDown:
		return KeyResult{Action: ActionInput, Data: []byte("\x1b[B")}
	case glfw.KeyRight:
		return KeyResult{Action: ActionInput, Data: []byte("\x1b[C")}
	case glfw.KeyLeft:
		return KeyResult{Action: ActionInput, Data: []byte("\x1b[D")}
	}

	// Backspace
	if key == glfw.KeyBackspace {
		return KeyResult{Action: ActionInput, Data: []byte{0x08}}
	}

	// Shift+Enter toggles fullscreen
	if shift && (key == glfw.KeyEnter || key == glfw.KeyKPEnter) {
		return KeyResult{Action: ActionToggleFullscreen}
	}

	// Return
	if key == glfw.KeyEnter || key == glfw.KeyKPEnter {
		return KeyResult{Action: ActionInput, Data: []byte{0x0a}}
	}

	// Tab
	if key == glfw.KeyTab {
		return KeyResult{Action: ActionInput, Data: []byte{0x09}}
	}

	// Escape
	if key == glfw.KeyEscape {
		return KeyResult{Action: ActionInput, Data: []byte{0x1b}}
	}

	// Control + letter: Ctrl+A = 1 .. Ctrl+Z = 26
	if ctrl && key >= glfw.KeyA && key <= glfw.KeyZ {
		return KeyResult{Action: ActionInput, Data: []byte{byte(key - glfw.KeyA + 1)}}
	}

	// Ctrl+Space sends NUL; normal space goes through the char callback
	if ctrl && key == glfw.KeySpace {
		return KeyResult{Action: ActionInput, Data: []byte{0}}
	}

	return KeyResult{Action: ActionNone}
}

// TranslateChar translates a character input to bytes for the child.
// Text is passed through verbatim; Alt prefixes an ESC.
func TranslateChar(char rune, mods glfw.ModifierKey) []byte {
	if mods&glfw.ModAlt != 0 {
		return append([]byte{0x1b}, encodeRune(char)...)
	}
	return encodeRune(char)
}

// WrapPaste frames pasted text for the child, using the bracketed
// paste markers when mode 2004 is set.
func WrapPaste(data []byte, bracketed bool) []byte {
	if !bracketed {
		return data
	}
	out := make([]byte, 0, len(data)+12)
	out = append(out, []byte("\x1b[200~")...)
	out = append(out, data...)
	out = append(out, []byte("\x1b[201~")...)
	return out
}

// encodeRune encodes a rune as UTF-8.
func encodeRune(r rune) []byte {
	if r < 0x80 {
		return []byte{byte(r)}
	}
	if r < 0x800 {
		return []byte{
			byte(0xC0 | (r >> 6)),
			byte(0x80 | (r & 0x3F)),
		}
	}
	if r < 0x10000 {
		return []byte{
			byte(0xE0 | (r >> 12)),
			byte(0x80 | ((r >> 6) & 0x3F)),
			byte(0x80 | (r & 0x3F)),
		}
	}
	return []byte{
		byte(0xF0 | (r >> 18)),
		byte(0x80 | ((r >> 12) & 0x3F)),
		byte(0x80 | ((r >> 6) & 0x3F)),
		byte(0x80 | (r & 0x3F)),
	}
}
