package notification

import (
	"log"
)

// Notifier shows a non-blocking desktop notification.
type Notifier interface {
	Notify(title, body string, withSound bool) error
}

// New returns the session-bus notifier, or a log-only notifier when no
// notification daemon is reachable.
func New(appName string) Notifier {
	n, err := NewDBus(appName)
	if err != nil {
		log.Printf("notification: falling back to log output: %v", err)
		return Log{}
	}
	return n
}

// Log writes notifications to the standard logger.
type Log struct{}

func (Log) Notify(title, body string, withSound bool) error {
	log.Printf("notification: %s: %s", title, body)
	return nil
}

// ShowBlockingError reports a startup failure. There is no modal dialog on
// this platform, so it is logged.
func ShowBlockingError(title, message string) {
	log.Printf("%s: %s", title, message)
}
