package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultDevToolsAddr = "127.0.0.1:9222"
	devToolsTimeout     = 2 * time.Second
)

// DevTools reads the active tab of a Chromium-based browser started with
// --remote-debugging-port. The target list is ordered most recently
// activated first, so the first page target is the frontmost tab.
type DevTools struct {
	Addr   string
	Client *http.Client
}

type devToolsTarget struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func (d DevTools) FrontmostURL(ctx context.Context) (string, error) {
	addr := d.Addr
	if addr == "" {
		addr = DefaultDevToolsAddr
	}
	client := d.Client
	if client == nil {
		client = &http.Client{Timeout: devToolsTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/json/list", nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrScript, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: devtools %s: %v", ErrScript, addr, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: devtools returned status %d", ErrScript, resp.StatusCode)
	}

	var targets []devToolsTarget
	if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
		return "", fmt.Errorf("%w: decoding devtools targets: %v", ErrScript, err)
	}
	for _, t := range targets {
		if t.Type == "page" && !strings.HasPrefix(t.URL, "devtools://") {
			return t.URL, nil
		}
	}
	return "", fmt.Errorf("%w: no page targets", ErrScript)
}
