package logutil

import (
	"fmt"
	"io"
	"log"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultLogFile = "screenotate_debug.log"
	maxSizeMB      = 10
	maxArchives    = 3
)

// Setup enables file logging with size-based rotation (10MB, max 3 archives).
// When disabled, logs are discarded (keeps stdout clean). It returns the
// writer so callers can close it on shutdown.
func Setup(enableFileLogging bool, path string) io.WriteCloser {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !enableFileLogging {
		log.SetOutput(io.Discard)
		return nopCloser{io.Discard}
	}
	if path == "" {
		path = DefaultLogFile
	}
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxArchives,
	}
	log.SetOutput(w)
	return w
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// RedactKey masks an API key, leaving first/last 4 chars: xxxx...yyyy
func RedactKey(k string) string {
	if len(k) <= 8 {
		return "********"
	}
	return fmt.Sprintf("%s...%s", k[:4], k[len(k)-4:])
}
