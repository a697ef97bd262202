package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"golang.org/x/oauth2"
)

const (
	defaultContentURL = "https://content.dropboxapi.com/2"
	defaultAPIURL     = "https://api.dropboxapi.com/2"
	DefaultFolder     = "/Screenshots"
)

type DropboxConfig struct {
	AccessToken string
	Folder      string // remote folder, defaults to DefaultFolder
	ContentURL  string
	APIURL      string
}

// Dropbox implements Storage against the Dropbox v2 HTTP API.
type Dropbox struct {
	http       *http.Client
	folder     string
	contentURL string
	apiURL     string
}

func NewDropbox(cfg DropboxConfig) (*Dropbox, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("dropbox access token is required")
	}
	d := &Dropbox{
		http:       oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})),
		folder:     cfg.Folder,
		contentURL: strings.TrimRight(cfg.ContentURL, "/"),
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
	}
	if d.folder == "" {
		d.folder = DefaultFolder
	}
	if d.contentURL == "" {
		d.contentURL = defaultContentURL
	}
	if d.apiURL == "" {
		d.apiURL = defaultAPIURL
	}
	return d, nil
}

// remotePath places a bare filename under the configured folder and leaves
// absolute remote paths alone.
func (d *Dropbox) remotePath(name string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	return path.Join(d.folder, name)
}

type dropboxReply struct {
	URL          string          `json:"url"`
	PathDisplay  string          `json:"path_display"`
	ErrorSummary string          `json:"error_summary"`
	Error        json.RawMessage `json:"error"`
}

// appError returns the application-level error carried by a reply, if any.
// Dropbox reports errors as {"error_summary": ..., "error": {...}}; a bare
// string "error" field is honored too.
func (r dropboxReply) appError() string {
	if r.ErrorSummary != "" {
		return r.ErrorSummary
	}
	if len(r.Error) > 0 {
		var s string
		if json.Unmarshal(r.Error, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

func (d *Dropbox) Upload(ctx context.Context, filename string, data []byte) Result {
	target := d.remotePath(filename)
	arg, err := json.Marshal(map[string]any{
		"path":       target,
		"mode":       "add",
		"autorename": true,
	})
	if err != nil {
		return TransportFailure(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.contentURL+"/files/upload", bytes.NewReader(data))
	if err != nil {
		return TransportFailure(err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Dropbox-API-Arg", string(arg))

	reply, res := d.do(req)
	if res != nil {
		return *res
	}
	// autorename may have stored the file as "name (1).html".
	if reply.PathDisplay != "" {
		return Stored(reply.PathDisplay)
	}
	return Stored(target)
}

func (d *Dropbox) ShareLink(ctx context.Context, remotePath string) Result {
	body, err := json.Marshal(map[string]any{"path": d.remotePath(remotePath)})
	if err != nil {
		return TransportFailure(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL+"/sharing/create_shared_link_with_settings", bytes.NewReader(body))
	if err != nil {
		return TransportFailure(err)
	}
	req.Header.Set("Content-Type", "application/json")

	reply, res := d.do(req)
	if res != nil {
		return *res
	}
	if reply.URL == "" {
		return AppFailure("share link response carried no url")
	}
	return Succeeded(reply.URL)
}

// do executes req and classifies the response. A nil *Result means success.
func (d *Dropbox) do(req *http.Request) (dropboxReply, *Result) {
	var reply dropboxReply
	resp, err := d.http.Do(req)
	if err != nil {
		r := TransportFailure(err)
		return reply, &r
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		r := TransportFailure(err)
		return reply, &r
	}
	if len(raw) > 0 && json.Unmarshal(raw, &reply) != nil && resp.StatusCode == http.StatusOK {
		r := TransportFailure(fmt.Errorf("malformed response: %.100s", raw))
		return reply, &r
	}
	if msg := reply.appError(); msg != "" {
		r := AppFailure(msg)
		return reply, &r
	}
	if resp.StatusCode != http.StatusOK {
		r := TransportFailure(fmt.Errorf("dropbox returned status %d: %.200s", resp.StatusCode, strings.TrimSpace(string(raw))))
		return reply, &r
	}
	return reply, nil
}
