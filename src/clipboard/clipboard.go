package clipboard

import (
	"sync"

	"golang.design/x/clipboard"
)

var (
	writeMu sync.Mutex
)

func Init() error {
	return clipboard.Init()
}

// System is the process-wide clipboard. Writes are serialized; ordering
// between callers is the callers' responsibility.
type System struct{}

// WriteText replaces the clipboard contents with text.
func (System) WriteText(text string) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// WriteImage replaces the clipboard contents with PNG-encoded image data.
func (System) WriteImage(png []byte) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtImage, png)
	return nil
}

// Clear empties the clipboard so a stale value cannot be pasted.
func (System) Clear() error {
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, nil)
	return nil
}
