package runtimeinit

import (
	"context"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"screenotate/src/browser"
	"screenotate/src/capture"
	"screenotate/src/config"
	"screenotate/src/geometry"
	"screenotate/src/selection"
	"screenotate/src/storage"
	"screenotate/src/window"
)

type closeCounter struct{ n int }

func (c *closeCounter) Close() error { c.n++; return nil }

func TestPointerWithoutX11(t *testing.T) {
	rt := &Runtime{}
	if _, err := rt.Pointer(context.Background()); err == nil {
		t.Fatal("expected error without an X connection")
	}
}

func TestCloseReleasesLogs(t *testing.T) {
	logs := &closeCounter{}
	rt := &Runtime{logs: logs}
	rt.Close()
	if logs.n != 1 {
		t.Fatalf("expected logs closed once, got %d", logs.n)
	}
}

func TestSetupOCRDisabledWithoutModel(t *testing.T) {
	text, err := setupOCR(&config.Config{APIKey: "k"}, Options{PingLLM: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != nil {
		t.Fatal("expected OCR disabled without a model")
	}
}

// x11Windows reports one window the way X11Lister does: its owner is the
// branded name for a WM_CLASS class.
type x11Windows struct{ class string }

func (w x11Windows) ListOnScreen(ctx context.Context) ([]window.Info, error) {
	return []window.Info{{
		Bounds: geometry.NewRect(0, 0, 1920, 1080),
		Title:  window.String("Docs"),
		Owner:  window.String(window.ApplicationName(w.class)),
	}}, nil
}

type stubCapturer struct{}

func (stubCapturer) Capture(int, geometry.Rect) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

type savedCaptures struct{ got []storage.Capture }

func (s *savedCaptures) Save(ctx context.Context, c storage.Capture) { s.got = append(s.got, c) }

type staticTab string

func (s staticTab) FrontmostURL(ctx context.Context) (string, error) { return string(s), nil }

func captureWith(t *testing.T, class string, pages *browser.Resolver) storage.Capture {
	t.Helper()
	store := &savedCaptures{}
	p := &capture.Pipeline{
		Windows:  window.NewResolver(x11Windows{class: class}, window.DefaultNormalLayer),
		Pages:    pages,
		Capturer: stubCapturer{},
		Store:    store,
	}
	views := &selection.Scripted{}
	s, err := selection.New(selection.Options{
		Displays: []geometry.Display{{ID: 0, Bounds: geometry.NewRect(0, 0, 1920, 1080)}},
		NewView:  views.NewView,
		Dispatch: func(f func()) { f() },
		Capture:  p.Run,
	})
	if err != nil {
		t.Fatalf("selection.New: %v", err)
	}
	s.Start(context.Background())
	views.Views()[0].Select(geometry.NewRect(100, 100, 50, 50))
	if len(store.got) != 1 {
		t.Fatalf("expected one stored capture, got %d", len(store.got))
	}
	return store.got[0]
}

func TestX11ChromeOwnerResolvesPageThroughDevTools(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"type":"page","url":"https://go.dev/"}]`))
	}))
	defer srv.Close()

	cfg := &config.Config{DevToolsAddr: strings.TrimPrefix(srv.URL, "http://")}
	got := captureWith(t, "Google-chrome", newPageResolver(cfg, "linux"))

	if window.Value(got.AppTitle) != "Google Chrome" {
		t.Errorf("unexpected app title %q", window.Value(got.AppTitle))
	}
	if got.URL == nil || *got.URL != "https://go.dev/" {
		t.Fatalf("expected page url, got %v", got.URL)
	}
}

func TestX11FirefoxOwnerReachesFirefoxSource(t *testing.T) {
	pages := newPageResolver(&config.Config{}, "linux")
	pages.Firefox = staticTab("https://mozilla.org/")

	got := captureWith(t, "firefox", pages)

	if got.URL == nil || *got.URL != "https://mozilla.org/" {
		t.Fatalf("expected page url, got %v", got.URL)
	}
}

func TestPageResolverPerPlatform(t *testing.T) {
	mac := newPageResolver(&config.Config{}, "darwin")
	if mac.AppleScript == nil || mac.Chrome != nil {
		t.Errorf("expected AppleScript on darwin, got %+v", mac)
	}
	linux := newPageResolver(&config.Config{DevToolsAddr: "127.0.0.1:9333"}, "linux")
	if linux.Chrome != (browser.DevTools{Addr: "127.0.0.1:9333"}) || linux.AppleScript != nil {
		t.Errorf("expected DevTools elsewhere, got %+v", linux)
	}
}
