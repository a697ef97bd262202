package hotkey

import (
	"testing"

	gohook "github.com/robotn/gohook"
)

func TestKeyNameToKeycodes(t *testing.T) {
	tests := []struct {
		keyName  string
		expected []uint16
	}{
		// Modifier keys
		{"ctrl", []uint16{0x001D, 0x0E1D}},
		{"alt", []uint16{0x0038, 0x0E38}},
		{"shift", []uint16{0x002A, 0x0036}},
		{"win", []uint16{0x0E5B, 0x0E5C}},
		{"cmd", []uint16{0x0E5B, 0x0E5C}},
		{"super", []uint16{0x0E5B, 0x0E5C}},

		// Letter keys
		{"q", []uint16{0x0010}},
		{"e", []uint16{0x0012}},
		{"o", []uint16{0x0018}},
		{"t", []uint16{0x0014}},

		// Number keys
		{"0", []uint16{0x000B}},
		{"1", []uint16{0x0002}},
		{"4", []uint16{0x0005}},
		{"9", []uint16{0x000A}},

		// Function keys
		{"f1", []uint16{0x003B}},
		{"f10", []uint16{0x0044}},
		{"f12", []uint16{0x0058}},
		{"f13", []uint16{0x005B}},
		{"f24", []uint16{0x0066}},

		// Special keys
		{"space", []uint16{0x0039}},
		{"enter", []uint16{0x001C}},
		{"esc", []uint16{EscapeKeycode}},

		// Unknown key
		{"unknown", nil},
	}

	for _, tt := range tests {
		t.Run(tt.keyName, func(t *testing.T) {
			result := keyNameToKeycodes(tt.keyName)
			if len(result) != len(tt.expected) {
				t.Errorf("keyNameToKeycodes(%q) returned %d keycodes, expected %d",
					tt.keyName, len(result), len(tt.expected))
				return
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("keyNameToKeycodes(%q)[%d] = %#x, expected %#x",
						tt.keyName, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"Ctrl+Alt+Q", []string{"ctrl", "alt", "q"}},
		{"Ctrl+Shift+O", []string{"ctrl", "shift", "o"}},
		{"Ctrl+alt+e", []string{"ctrl", "alt", "e"}},
		{"Alt+F4", []string{"alt", "f4"}},
		{"Ctrl+Shift+F13", []string{"ctrl", "shift", "f13"}},
		{"Alt+F24", []string{"alt", "f24"}},
		{"Ctrl+Shift+T", []string{"ctrl", "shift", "t"}},
		{"Ctrl+Win+E", []string{"ctrl", "cmd", "e"}},
		{"Win+Shift+S", []string{"cmd", "shift", "s"}},
		{"Super+Alt+T", []string{"cmd", "alt", "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseHotkey(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("parseHotkey(%q) returned %d keys, expected %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("parseHotkey(%q)[%d] = %q, expected %q",
						tt.input, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func key(kind uint8, code uint16) gohook.Event {
	return gohook.Event{Kind: kind, Keycode: code}
}

func TestMatcherDetectsCombination(t *testing.T) {
	m := NewMatcher("Ctrl+Shift+4")
	if m == nil {
		t.Fatal("expected matcher")
	}

	if m.Feed(key(gohook.KeyDown, 0x001D)) {
		t.Fatal("ctrl alone must not fire")
	}
	if m.Feed(key(gohook.KeyDown, 0x0036)) {
		t.Fatal("ctrl+shift must not fire")
	}
	if !m.Feed(key(gohook.KeyDown, 0x0005)) {
		t.Fatal("ctrl+shift+4 should fire")
	}
	// State resets after firing.
	if m.Feed(key(gohook.KeyDown, 0x0005)) {
		t.Fatal("repeat without modifiers must not fire")
	}
}

func TestMatcherKeyUpReleases(t *testing.T) {
	m := NewMatcher("Ctrl+Q")
	m.Feed(key(gohook.KeyDown, 0x001D))
	m.Feed(key(gohook.KeyUp, 0x001D))
	if m.Feed(key(gohook.KeyDown, 0x0010)) {
		t.Fatal("released ctrl must not count")
	}
}

func TestMatcherIgnoresMouse(t *testing.T) {
	m := NewMatcher("Q")
	if m.Feed(gohook.Event{Kind: gohook.MouseMove, Keycode: 0x0010}) {
		t.Fatal("mouse events must be ignored")
	}
}

func TestNewMatcherUnknownKeys(t *testing.T) {
	if NewMatcher("Hyper+Nope") != nil {
		t.Fatal("expected nil matcher")
	}
}

func TestHubDispatch(t *testing.T) {
	h := &Hub{handlers: map[int]Handler{}, started: true}
	var got []uint16
	unsubscribe := h.Subscribe(func(ev gohook.Event) { got = append(got, ev.Keycode) })

	h.Dispatch(key(gohook.KeyDown, 1))
	unsubscribe()
	h.Dispatch(key(gohook.KeyDown, 2))

	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("unexpected events %v", got)
	}
}
