package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// ErrScript wraps every failure reported by a scripting collaborator.
var ErrScript = errors.New("browser script failed")

// Scripter runs an automation script and returns its textual result.
type Scripter interface {
	Run(ctx context.Context, source string) (string, error)
}

// TabSource reads the URL of one browser's frontmost tab.
type TabSource interface {
	FrontmostURL(ctx context.Context) (string, error)
}

// Resolver looks up the page shown by the frontmost tab of a browser.
// It assumes the captured tab is the frontmost tab of the browser's
// frontmost window. Chrome, when set, replaces AppleScript for Chrome and
// Chromium.
type Resolver struct {
	AppleScript Scripter
	Chrome      TabSource
	Firefox     TabSource
}

// Resolve dispatches on a case-sensitive substring of the application title.
// The match is deliberately loose: "Google Chrome", "Chromium" and
// "Firefox Developer Edition" all land on the right branch. Unsupported
// applications and script failures both yield ok=false.
func (r *Resolver) Resolve(ctx context.Context, applicationTitle string) (string, bool) {
	if r == nil {
		return "", false
	}

	var (
		url string
		err error
	)
	switch {
	case strings.Contains(applicationTitle, "Firefox"):
		if r.Firefox == nil {
			return "", false
		}
		url, err = r.Firefox.FrontmostURL(ctx)
	case (strings.Contains(applicationTitle, "Chrome") || strings.Contains(applicationTitle, "Chromium")) && r.Chrome != nil:
		url, err = r.Chrome.FrontmostURL(ctx)
	case strings.Contains(applicationTitle, "Chrome"), strings.Contains(applicationTitle, "Chromium"):
		url, err = r.run(ctx, fmt.Sprintf("tell application %q to return URL of active tab of front window", applicationTitle))
	case strings.Contains(applicationTitle, "Safari"):
		url, err = r.run(ctx, fmt.Sprintf("tell application %q to return URL of front document", applicationTitle))
	default:
		return "", false
	}

	if err != nil {
		log.Printf("browser: page lookup for %q failed: %v", applicationTitle, err)
		return "", false
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return "", false
	}
	return url, true
}

func (r *Resolver) run(ctx context.Context, source string) (string, error) {
	if r.AppleScript == nil {
		return "", fmt.Errorf("%w: no script runner", ErrScript)
	}
	return r.AppleScript.Run(ctx, source)
}
