// Package runtimeinit assembles the capture stack from configuration. The
// resident and the CLI share it.
package runtimeinit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"time"

	"screenotate/src/browser"
	"screenotate/src/capture"
	"screenotate/src/clipboard"
	"screenotate/src/config"
	"screenotate/src/geometry"
	"screenotate/src/history"
	"screenotate/src/llm"
	"screenotate/src/logutil"
	"screenotate/src/notification"
	"screenotate/src/ocr"
	"screenotate/src/prefs"
	"screenotate/src/remote"
	"screenotate/src/screenshot"
	"screenotate/src/storage"
	"screenotate/src/window"
)

const AppName = "Screenotate"

type Options struct {
	LoadOptions config.LoadOptions
	// SetupLogging replaces the default file/discard logging setup.
	SetupLogging         func(cfg *config.Config) io.Closer
	PingLLM              bool
	ShowBlockingLLMError bool
}

// Runtime holds the long-lived collaborators of one process.
type Runtime struct {
	Config   *config.Config
	Notifier notification.Notifier
	History  *history.Repository
	X11      *window.X11Lister
	Windows  *window.Resolver
	Pages    *browser.Resolver
	Store    *storage.Pipeline
	Capture  *capture.Pipeline

	logs io.Closer
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	rt := &Runtime{Config: cfg}
	if opts.SetupLogging != nil {
		rt.logs = opts.SetupLogging(cfg)
	} else {
		rt.logs = logutil.Setup(cfg.EnableFileLogging, cfg.LogFile)
	}

	text, err := setupOCR(cfg, opts)
	if err != nil {
		return nil, err
	}

	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
	}

	rt.Notifier = notification.New(AppName)

	if repo, err := history.Open(cfg.HistoryDB); err != nil {
		log.Printf("history disabled: %v", err)
	} else {
		rt.History = repo
	}

	rt.Windows = window.NewResolver(nil, cfg.NormalLayer)
	if x11, err := window.NewX11Lister(); err != nil {
		log.Printf("window resolution disabled: %v", err)
	} else {
		rt.X11 = x11
		rt.Windows.Lister = x11
	}

	rt.Pages = newPageResolver(cfg, runtime.GOOS)

	rt.Store = &storage.Pipeline{
		Prefs:     prefs.File{Path: cfg.PreferencesFile},
		Clipboard: clipboard.System{},
		Notifier:  rt.Notifier,
	}
	if text != nil {
		rt.Store.Text = text
	}
	if rt.History != nil {
		rt.Store.History = rt.History
	}
	if cfg.DropboxToken != "" {
		dbx, err := remote.NewDropbox(remote.DropboxConfig{AccessToken: cfg.DropboxToken})
		if err != nil {
			return nil, fmt.Errorf("failed to configure remote storage: %w", err)
		}
		rt.Store.Remote = dbx
		log.Printf("remote storage: dropbox (token %s)", logutil.RedactKey(cfg.DropboxToken))
	}

	rt.Capture = &capture.Pipeline{
		Settle:    cfg.Settle,
		Windows:   rt.Windows,
		Pages:     rt.Pages,
		Capturer:  screenshot.Capturer{},
		Clipboard: clipboard.System{},
		Store:     rt.Store,
	}

	log.Printf("%s initialized: settle=%v layer=%d prefs=%q", AppName, cfg.Settle, cfg.NormalLayer, cfg.PreferencesFile)
	return rt, nil
}

// newPageResolver reads Chrome and Chromium tabs through AppleScript on macOS
// and through the DevTools endpoint elsewhere. Firefox always goes through
// MozRepl.
func newPageResolver(cfg *config.Config, goos string) *browser.Resolver {
	r := &browser.Resolver{Firefox: browser.MozRepl{Addr: cfg.MozReplAddr}}
	if goos == "darwin" {
		r.AppleScript = browser.OSAScript{}
	} else {
		r.Chrome = browser.DevTools{Addr: cfg.DevToolsAddr}
	}
	return r
}

// setupOCR returns nil when no model is configured; documents are then
// saved without extracted text.
func setupOCR(cfg *config.Config, opts Options) (*ocr.Extractor, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		log.Printf("OCR disabled: OPENROUTER_API_KEY and MODEL are both required (key file %s)", cfg.APIKeyPath)
		return nil, nil
	}
	llm.Init(&llm.Config{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		Providers: cfg.Providers,
	})
	log.Printf("OCR model %s, key %s", cfg.Model, logutil.RedactKey(cfg.APIKey))

	if opts.PingLLM {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := llm.Ping(ctx); err != nil {
			if opts.ShowBlockingLLMError {
				notification.ShowBlockingError("LLM unavailable", fmt.Sprintf("Startup check failed: %v\n\nPlease verify your API key and network connectivity.", err))
			}
			return nil, fmt.Errorf("startup check failed: %w", err)
		}
		log.Printf("LLM ping succeeded")
	}
	return ocr.New(time.Duration(cfg.OCRDeadlineSec) * time.Second), nil
}

// Pointer returns the global pointer position, or an error when no X
// connection is available.
func (r *Runtime) Pointer(ctx context.Context) (geometry.Point, error) {
	if r.X11 == nil {
		return geometry.Point{}, errors.New("pointer location unavailable")
	}
	return r.X11.PointerLocation(ctx)
}

// Close waits for pending uploads and releases connections.
func (r *Runtime) Close() {
	if r.Store != nil {
		r.Store.Wait()
	}
	if r.History != nil {
		if err := r.History.Close(); err != nil {
			log.Printf("history close: %v", err)
		}
	}
	if r.X11 != nil {
		_ = r.X11.Close()
	}
	if r.logs != nil {
		_ = r.logs.Close()
	}
}
