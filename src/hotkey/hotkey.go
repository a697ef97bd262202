package hotkey

import (
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Listen calls callback every time the hotkeyConfig combination (for
// example "Ctrl+Shift+4") is pressed. It returns the unsubscribe function, or
// nil when no key of the combination can be mapped.
func Listen(hotkeyConfig string, callback func()) func() {
	m := NewMatcher(hotkeyConfig)
	if m == nil {
		log.Printf("ERROR: No valid keys in hotkey configuration '%s'", hotkeyConfig)
		return nil
	}
	log.Printf("Hotkey listener configured for: %s", hotkeyConfig)
	return Default.Subscribe(func(ev gohook.Event) {
		if m.Feed(ev) && callback != nil {
			callback()
		}
	})
}

type keyState struct {
	name     string
	keycodes []uint16
	pressed  bool
}

// Matcher tracks which keys of one combination are held down.
type Matcher struct {
	combo string
	mu    sync.Mutex
	keys  []keyState
}

// NewMatcher returns nil when none of the combination's keys are known.
func NewMatcher(hotkeyConfig string) *Matcher {
	keys := parseHotkey(hotkeyConfig)
	log.Printf("Parsed hotkey configuration: %v", keys)

	m := &Matcher{combo: hotkeyConfig}
	for _, keyName := range keys {
		keycodes := keyNameToKeycodes(keyName)
		if len(keycodes) == 0 {
			log.Printf("ERROR: Cannot map key '%s' to keycodes, hotkey may not work correctly", keyName)
			continue
		}
		m.keys = append(m.keys, keyState{name: keyName, keycodes: keycodes})
	}
	if len(m.keys) == 0 {
		return nil
	}
	return m
}

// Feed updates key state from ev and reports whether the full combination
// has just been pressed.
func (m *Matcher) Feed(ev gohook.Event) bool {
	if ev.Kind != gohook.KeyDown && ev.Kind != gohook.KeyUp {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.keys {
		for _, code := range m.keys[i].keycodes {
			if ev.Keycode == code {
				m.keys[i].pressed = ev.Kind == gohook.KeyDown
				break
			}
		}
	}
	if ev.Kind == gohook.KeyUp {
		return false
	}

	for i := range m.keys {
		if !m.keys[i].pressed {
			return false
		}
	}
	log.Printf("HOTKEY COMBINATION DETECTED! %s", m.combo)
	for i := range m.keys {
		m.keys[i].pressed = false
	}
	return true
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	// Convert to lowercase and split by +
	parts := strings.Split(strings.ToLower(hotkeyConfig), "+")
	var keys []string

	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "ctrl":
			keys = append(keys, "ctrl")
		case "alt":
			keys = append(keys, "alt")
		case "shift":
			keys = append(keys, "shift")
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			// Regular key
			keys = append(keys, part)
		}
	}

	return keys
}

// keyNameToKeycodes maps a key name to libuiohook virtual key codes, which
// gohook reports in Event.Keycode on every platform. Modifiers return both
// the left and right variants.
func keyNameToKeycodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))

	if code, ok := letterKeycodes[keyName]; ok {
		return []uint16{code}
	}

	switch keyName {
	// Modifier keys
	case "ctrl":
		return []uint16{0x001D, 0x0E1D}
	case "alt":
		return []uint16{0x0038, 0x0E38}
	case "shift":
		return []uint16{0x002A, 0x0036}
	case "win", "cmd", "super":
		return []uint16{0x0E5B, 0x0E5C}

	// Number row: 1-9 are 0x02-0x0A, 0 is 0x0B
	case "0":
		return []uint16{0x000B}
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return []uint16{uint16(keyName[0]-'1') + 0x0002}

	// Function keys
	case "f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10":
		return []uint16{0x003B + functionIndex(keyName)}
	case "f11":
		return []uint16{0x0057}
	case "f12":
		return []uint16{0x0058}
	case "f13", "f14", "f15", "f16", "f17", "f18", "f19", "f20", "f21", "f22", "f23", "f24":
		return []uint16{0x005B + functionIndex(keyName) - 12}

	// Common special keys
	case "space":
		return []uint16{0x0039}
	case "enter", "return":
		return []uint16{0x001C}
	case "esc", "escape":
		return []uint16{0x0001}
	case "tab":
		return []uint16{0x000F}
	case "backspace":
		return []uint16{0x000E}
	case "delete", "del":
		return []uint16{0x0E53}
	case "insert", "ins":
		return []uint16{0x0E52}
	case "home":
		return []uint16{0x0E47}
	case "end":
		return []uint16{0x0E4F}
	case "pageup", "pgup":
		return []uint16{0x0E49}
	case "pagedown", "pgdn":
		return []uint16{0x0E51}

	// Arrow keys
	case "left":
		return []uint16{0xE04B}
	case "up":
		return []uint16{0xE048}
	case "right":
		return []uint16{0xE04D}
	case "down":
		return []uint16{0xE050}

	default:
		log.Printf("WARNING: Unknown key name '%s', cannot map to keycode", keyName)
		return nil
	}
}

// functionIndex returns n-1 for "fN".
func functionIndex(keyName string) uint16 {
	n := 0
	for _, c := range keyName[1:] {
		n = n*10 + int(c-'0')
	}
	return uint16(n - 1)
}

// EscapeKeycode is the keycode gohook reports for Escape.
const EscapeKeycode uint16 = 0x0001

var letterKeycodes = map[string]uint16{
	"a": 0x001E, "b": 0x0030, "c": 0x002E, "d": 0x0020, "e": 0x0012,
	"f": 0x0021, "g": 0x0022, "h": 0x0023, "i": 0x0017, "j": 0x0024,
	"k": 0x0025, "l": 0x0026, "m": 0x0032, "n": 0x0031, "o": 0x0018,
	"p": 0x0019, "q": 0x0010, "r": 0x0013, "s": 0x001F, "t": 0x0014,
	"u": 0x0016, "v": 0x002F, "w": 0x0011, "x": 0x002D, "y": 0x0015,
	"z": 0x002C,
}
