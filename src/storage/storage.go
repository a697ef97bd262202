// Package storage persists a captured document to the configured
// destination, uploading to remote storage with a local fallback.
package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"screenotate/src/document"
	"screenotate/src/history"
	"screenotate/src/notification"
	"screenotate/src/prefs"
	"screenotate/src/remote"
)

const (
	rawSuffix = "&raw=1"

	shareErrorTitle = "Screenshot Sharing Error"
	sharingTitle    = "Sharing Screenshot"
)

// Capture is what the capture pipeline hands over for one selection.
type Capture struct {
	Image       []byte // PNG
	PointHeight float64
	WindowTitle *string
	AppTitle    *string
	URL         *string
	CopyMode    bool
}

// TextExtractor transcribes the image; it may return "".
type TextExtractor interface {
	Extract(ctx context.Context, png []byte) (string, error)
}

type Clipboard interface {
	WriteText(text string) error
	WriteImage(png []byte) error
	Clear() error
}

// Recorder receives one record per saved capture.
type Recorder interface {
	Add(rec *history.Record) error
	SetShareURL(id, url string) error
}

// Pipeline builds documents and writes them out. Remote is created once per
// process and shared by every capture.
type Pipeline struct {
	Prefs     prefs.Source
	Remote    remote.Storage
	Text      TextExtractor
	Clipboard Clipboard
	Notifier  notification.Notifier
	History   Recorder
	Now       func() time.Time

	wg sync.WaitGroup
}

// Save persists c. Failures are logged and reported through the notifier;
// nothing is returned to the caller.
func (p *Pipeline) Save(ctx context.Context, c Capture) {
	doc := p.build(ctx, c)
	data, err := doc.Render()
	if err != nil {
		log.Printf("storage: render failed: %v", err)
		return
	}
	name := doc.Filename()

	pr := prefs.Defaults()
	if p.Prefs != nil {
		if pr, err = p.Prefs.Load(); err != nil {
			log.Printf("storage: preferences unavailable, using defaults: %v", err)
		}
	}
	log.Printf("storage: saving %s (%s) to %s", name, humanize.Bytes(uint64(len(data))), pr.Destination)

	if pr.Destination != prefs.DestinationDropbox || p.Remote == nil {
		loc, werr := writeFolder(pr.SaveFolder, name, data)
		p.record(&history.Record{
			Filename:    name,
			Destination: string(prefs.DestinationFolder),
			Location:    loc,
			Error:       errString(werr),
		}, c)
		return
	}

	if !c.CopyMode {
		p.clearClipboard()
	}
	// The upload outlives the caller's context.
	bg := context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.upload(bg, name, data, pr.OfflineFolder, c)
	}()
}

// Wait blocks until every upload and share-link request started by Save has
// completed.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) build(ctx context.Context, c Capture) document.Document {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	doc := document.Document{
		Image:       c.Image,
		PointHeight: c.PointHeight,
		Timestamp:   now(),
		WindowTitle: c.WindowTitle,
		AppTitle:    c.AppTitle,
		URL:         c.URL,
	}
	if p.Text != nil {
		text, err := p.Text.Extract(ctx, c.Image)
		if err != nil {
			log.Printf("storage: text extraction failed: %v", err)
		}
		doc.Text = text
	}
	return doc
}

func (p *Pipeline) upload(ctx context.Context, name string, data []byte, offline string, c Capture) {
	res := p.Remote.Upload(ctx, name, data)
	rec := &history.Record{
		Filename:    name,
		Destination: string(prefs.DestinationDropbox),
		Location:    name,
	}
	if res.Kind != remote.Success {
		log.Printf("storage: upload of %s failed (%s): %s", name, res.Kind, res.Message)
		p.notify(shareErrorTitle, "Saved to local folder instead. "+res.Message, false)
		loc, werr := writeFolder(offline, name, data)
		rec.Location = loc
		rec.FellBack = true
		rec.Error = res.Message
		if werr != nil {
			rec.Error = fmt.Sprintf("%s; %v", res.Message, werr)
		}
		p.record(rec, c)
		return
	}
	stored := res.Path
	if stored == "" {
		stored = name
	}
	rec.Location = stored
	p.record(rec, c)
	if c.CopyMode {
		return
	}

	link := p.Remote.ShareLink(ctx, stored)
	if link.Kind != remote.Success {
		log.Printf("storage: share link for %s failed (%s): %s", name, link.Kind, link.Message)
		p.notify(shareErrorTitle, link.Message, false)
		return
	}
	url := link.URL + rawSuffix
	p.clearClipboard()
	if p.Clipboard != nil {
		if err := p.Clipboard.WriteText(url); err != nil {
			log.Printf("storage: could not copy link: %v", err)
		}
	}
	if p.History != nil && rec.ID != "" {
		if err := p.History.SetShareURL(rec.ID, url); err != nil {
			log.Printf("storage: history update failed: %v", err)
		}
	}
	p.notify(sharingTitle, sharedBody(c.WindowTitle), true)
}

func sharedBody(title *string) string {
	if title != nil && *title != "" {
		return fmt.Sprintf("A link to your screenshot of '%s' has been copied to the Clipboard.", *title)
	}
	return "A link to your screenshot has been copied to the Clipboard."
}

// writeFolder is the fallback of last resort: its errors are logged and
// returned for the history record only.
func writeFolder(folder, name string, data []byte) (string, error) {
	path := filepath.Join(folder, name)
	if err := os.MkdirAll(folder, 0755); err != nil {
		log.Printf("storage: cannot create %s: %v", folder, err)
		return path, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("storage: write %s failed: %v", path, err)
		return path, err
	}
	log.Printf("storage: wrote %s", path)
	return path, nil
}

func (p *Pipeline) clearClipboard() {
	if p.Clipboard == nil {
		return
	}
	if err := p.Clipboard.Clear(); err != nil {
		log.Printf("storage: clipboard clear failed: %v", err)
	}
}

func (p *Pipeline) notify(title, body string, withSound bool) {
	if p.Notifier == nil {
		return
	}
	if err := p.Notifier.Notify(title, body, withSound); err != nil {
		log.Printf("storage: notification failed: %v", err)
	}
}

func (p *Pipeline) record(rec *history.Record, c Capture) {
	if p.History == nil {
		return
	}
	rec.WindowTitle = deref(c.WindowTitle)
	rec.AppTitle = deref(c.AppTitle)
	rec.PageURL = deref(c.URL)
	if err := p.History.Add(rec); err != nil {
		log.Printf("storage: history: %v", err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
