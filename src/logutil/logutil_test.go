package logutil

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRedactKey(t *testing.T) {
	if got := RedactKey("sk-or-1234567890abcd"); got != "sk-o...abcd" {
		t.Errorf("unexpected redaction %q", got)
	}
	if got := RedactKey("short"); got != "********" {
		t.Errorf("short keys must be fully masked, got %q", got)
	}
}

func TestSetupWritesToFile(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	path := filepath.Join(t.TempDir(), "test.log")

	w := Setup(true, path)
	log.Printf("storage: wrote %s", "x.html")
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "storage: wrote x.html") {
		t.Errorf("log line missing: %q", data)
	}
}

func TestSetupDisabledDiscards(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	w := Setup(false, "")
	if log.Writer() != io.Discard {
		t.Error("expected discarded output")
	}
	_ = w.Close()
}
