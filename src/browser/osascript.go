package browser

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// OSAScript runs AppleScript through the osascript binary.
type OSAScript struct {
	Path string // defaults to "osascript"
}

func (o OSAScript) Run(ctx context.Context, source string) (string, error) {
	bin := o.Path
	if bin == "" {
		bin = "osascript"
	}
	cmd := exec.CommandContext(ctx, bin, "-e", source)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: %v: %s", ErrScript, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(string(out)), nil
}
