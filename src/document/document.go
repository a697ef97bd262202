// Package document renders a capture into a single self-contained HTML file.
package document

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TimestampLayout renders as "2015-06-27 at 4.05.09 PM".
const TimestampLayout = "2006-01-02 at 3.04.05 PM"

const (
	untitled = "[untitled]"
	unknown  = "[unknown]"
)

// Document is the persisted artifact for one capture. The zero value of each
// optional field means "absent".
type Document struct {
	Image       []byte // PNG
	Text        string
	PointHeight float64
	Timestamp   time.Time
	WindowTitle *string
	AppTitle    *string
	URL         *string
}

func (d Document) timestamp() string {
	return d.Timestamp.Format(TimestampLayout)
}

// Filename is "Screenshot <timestamp>.html".
func (d Document) Filename() string {
	return fmt.Sprintf("Screenshot %s.html", d.timestamp())
}

// DataURI inlines the image so the document has no external references.
func (d Document) DataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(d.Image)
}

// Render produces the UTF-8 document. Every string that did not originate
// here (titles, URL, extracted text) goes through html.Render as a text node
// or attribute value and is escaped there.
func (d Document) Render() ([]byte, error) {
	ts := d.timestamp()
	windowTitle := orDefault(d.WindowTitle, untitled)
	appTitle := orDefault(d.AppTitle, unknown)

	list := element(atom.Dl, nil)
	if d.URL != nil {
		list.AppendChild(element(atom.Dt, nil, text("URL")))
		link := text(*d.URL)
		if linkable(*d.URL) {
			link = element(atom.A, []html.Attribute{{Key: "href", Val: *d.URL}}, text(*d.URL))
		}
		list.AppendChild(element(atom.Dd, nil, link))
	}
	for _, item := range []struct{ term, def string }{
		{"Timestamp", ts},
		{"Window title", windowTitle},
		{"App title", appTitle},
	} {
		list.AppendChild(element(atom.Dt, nil, text(item.term)))
		list.AppendChild(element(atom.Dd, nil, text(item.def)))
	}
	list.AppendChild(element(atom.Dt, nil, text("Text")))
	list.AppendChild(element(atom.Dd, nil, element(atom.Pre, nil, text(d.Text))))

	root := element(atom.Html, nil,
		element(atom.Head, nil,
			element(atom.Meta, []html.Attribute{{Key: "charset", Val: "UTF-8"}}),
			element(atom.Title, nil, text(windowTitle+", "+ts)),
		),
		element(atom.Body, nil,
			element(atom.Div, nil,
				element(atom.Img, []html.Attribute{
					{Key: "height", Val: strconv.FormatFloat(d.PointHeight, 'f', -1, 64)},
					{Key: "src", Val: d.DataURI()},
				}),
			),
			element(atom.Div, nil, list),
		),
	)

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// linkable reports whether u may become an href. Other schemes such as
// javascript: are shown as plain text.
func linkable(u string) bool {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return true
	}
	return false
}

func element(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
