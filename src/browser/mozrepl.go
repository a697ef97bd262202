package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ziutek/telnet"
)

const (
	DefaultMozReplAddr = "127.0.0.1:4242"
	mozReplPrompt      = "repl>"
	mozReplTimeout     = 2 * time.Second
)

// MozRepl asks a running MozRepl console for the frontmost tab's URL.
type MozRepl struct {
	Addr    string
	Timeout time.Duration
}

func (m MozRepl) FrontmostURL(ctx context.Context) (string, error) {
	addr := m.Addr
	if addr == "" {
		addr = DefaultMozReplAddr
	}
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = mozReplTimeout
	}
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < timeout {
			timeout = d
		}
	}

	conn, err := telnet.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", fmt.Errorf("%w: dial mozrepl %s: %v", ErrScript, addr, err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrScript, err)
	}

	if err := conn.SkipUntil(mozReplPrompt); err != nil {
		return "", fmt.Errorf("%w: waiting for prompt: %v", ErrScript, err)
	}
	if _, err := conn.Write([]byte("content.location.href\n")); err != nil {
		return "", fmt.Errorf("%w: %v", ErrScript, err)
	}
	reply, err := conn.ReadUntil(mozReplPrompt)
	if err != nil {
		return "", fmt.Errorf("%w: reading reply: %v", ErrScript, err)
	}
	return parseMozReplReply(string(reply))
}

// parseMozReplReply extracts the quoted string value from a reply such as
// "\"https://example.com/\"\nrepl> ".
func parseMozReplReply(reply string) (string, error) {
	reply = strings.TrimSuffix(strings.TrimSpace(reply), mozReplPrompt)
	reply = strings.TrimSpace(reply)
	if strings.HasPrefix(reply, "!!!") {
		return "", fmt.Errorf("%w: %s", ErrScript, reply)
	}
	if len(reply) < 2 || reply[0] != '"' || reply[len(reply)-1] != '"' {
		return "", fmt.Errorf("%w: unexpected reply %q", ErrScript, reply)
	}
	return reply[1 : len(reply)-1], nil
}
