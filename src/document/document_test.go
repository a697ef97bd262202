package document

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

var fixedTime = time.Date(2015, time.June, 27, 16, 5, 9, 0, time.UTC)

func TestFilename(t *testing.T) {
	d := Document{Timestamp: fixedTime}
	assert.Equal(t, "Screenshot 2015-06-27 at 4.05.09 PM.html", d.Filename())

	d.Timestamp = time.Date(2020, time.January, 2, 0, 3, 4, 0, time.UTC)
	assert.Equal(t, "Screenshot 2020-01-02 at 12.03.04 AM.html", d.Filename())
}

func TestRenderFullDocument(t *testing.T) {
	d := Document{
		Image:       []byte{0x89, 'P', 'N', 'G'},
		Text:        "hello\nworld",
		PointHeight: 120.5,
		Timestamp:   fixedTime,
		WindowTitle: ptr("Inbox"),
		AppTitle:    ptr("Mail"),
		URL:         ptr("https://example.com/?a=1&b=2"),
	}

	out, err := d.Render()
	require.NoError(t, err)
	s := string(out)

	assert.True(t, strings.HasPrefix(s, "<html>"))
	assert.Contains(t, s, `<meta charset="UTF-8"/>`)
	assert.Contains(t, s, "<title>Inbox, 2015-06-27 at 4.05.09 PM</title>")
	assert.Contains(t, s, `<img height="120.5" src="data:image/png;base64,iVBORw=="/>`)
	assert.Contains(t, s, `<dt>URL</dt><dd><a href="https://example.com/?a=1&amp;b=2">https://example.com/?a=1&amp;b=2</a></dd>`)
	assert.Contains(t, s, "<dt>Window title</dt><dd>Inbox</dd>")
	assert.Contains(t, s, "<dt>App title</dt><dd>Mail</dd>")
	assert.Contains(t, s, "<pre>hello\nworld</pre>")
	assert.NotContains(t, s, "http://", "no external references")
}

func TestRenderDefaultsForAbsentFields(t *testing.T) {
	out, err := Document{Timestamp: fixedTime, PointHeight: 10}.Render()
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, "<title>[untitled], 2015-06-27 at 4.05.09 PM</title>")
	assert.Contains(t, s, "<dd>[unknown]</dd>")
	assert.NotContains(t, s, "<dt>URL</dt>")
}

func TestRenderEscapesExternalStrings(t *testing.T) {
	d := Document{
		Timestamp:   fixedTime,
		WindowTitle: ptr("<script>alert(1)</script>"),
		AppTitle:    ptr(`Evil "App" & co`),
		URL:         ptr(`https://x.test/"><script>alert(2)</script>`),
		Text:        "</pre><b>bold</b>",
	}

	out, err := d.Render()
	require.NoError(t, err)
	s := string(out)

	assert.NotContains(t, s, "<script>")
	assert.NotContains(t, s, "<b>")
	assert.Contains(t, s, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, s, "Evil &#34;App&#34; &amp; co")
	assert.Contains(t, s, `href="https://x.test/&#34;&gt;&lt;script&gt;alert(2)&lt;/script&gt;"`)
	assert.Contains(t, s, "&lt;/pre&gt;&lt;b&gt;bold&lt;/b&gt;")
}

func TestRenderShowsNonWebURLAsText(t *testing.T) {
	for _, u := range []string{"javascript:alert(1)", " JavaScript:alert(1)", "data:text/html,<b>x</b>", "file:///etc/passwd"} {
		out, err := Document{Timestamp: fixedTime, URL: ptr(u)}.Render()
		require.NoError(t, err)
		s := string(out)
		assert.Contains(t, s, "<dt>URL</dt>", u)
		assert.NotContains(t, s, "<a ", u)
		assert.NotContains(t, s, "href=", u)
	}
}
