package notification

import (
	"os"
	"testing"
)

func TestLogNotifier(t *testing.T) {
	if err := (Log{}).Notify("Sharing Screenshot", "copied", true); err != nil {
		t.Fatalf("Notify: %v", err)
	}
}

func TestNotifyHints(t *testing.T) {
	h := notifyHints(true)
	if h["sound-name"].Value() != defaultSound {
		t.Errorf("expected sound hint, got %v", h)
	}
	h = notifyHints(false)
	if v, ok := h["suppress-sound"].Value().(bool); !ok || !v {
		t.Errorf("expected suppress-sound hint, got %v", h)
	}
}

func TestDBusNotify(t *testing.T) {
	if os.Getenv("SCREENOTATE_INTERACTIVE_TESTS") != "1" {
		t.Skip("set SCREENOTATE_INTERACTIVE_TESTS=1 to send a desktop notification")
	}
	n, err := NewDBus("screenotate-test")
	if err != nil {
		t.Skipf("session bus unavailable: %v", err)
	}
	if err := n.Notify("Screenotate test", "hello", false); err != nil {
		t.Fatalf("Notify: %v", err)
	}
}
