package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"screenotate/src/config"
	"screenotate/src/eventloop"
	"screenotate/src/hotkey"
	"screenotate/src/overlay"
	"screenotate/src/runtimeinit"
	"screenotate/src/screenshot"
	"screenotate/src/selection"
	"screenotate/src/singleinstance"
	"screenotate/src/tray"
)

type mainOptions struct {
	capture     bool
	captureCopy bool
	apiKeyPath  string
	preferences string
}

func main() {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(normalizeLegacyArgs(os.Args)[1:])
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screenotate",
		Short:         "Capture screen regions into self-contained annotated HTML documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadOptions := config.LoadOptions{
				APIKeyPathOverride:      opts.apiKeyPath,
				PreferencesFileOverride: opts.preferences,
			}
			if opts.capture || opts.captureCopy {
				// Load .env early so SINGLEINSTANCE_PORT_* are applied before delegation scan
				_, _ = config.LoadWithOptions(loadOptions)
				req := singleinstance.Request{CopyMode: opts.captureCopy}
				handleRunOnceWithDelegation(req, singleinstance.NewClient(), func() {
					if err := runCaptureOnce(loadOptions, req.CopyMode); err != nil {
						fmt.Fprintf(os.Stderr, "Capture failed: %v\n", err)
						os.Exit(1)
					}
				})
				return nil
			}
			return runResident(loadOptions)
		},
	}

	cmd.Flags().BoolVar(&opts.capture, "capture", false, "Start one capture (delegated to the resident when running) and exit")
	cmd.Flags().BoolVar(&opts.captureCopy, "capture-copy", false, "Like --capture, and copy the image to the clipboard")
	cmd.Flags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	cmd.Flags().StringVar(&opts.preferences, "preferences", "", "Path to a .plist or .yaml preferences file")
	return cmd
}

// normalizeLegacyArgs maps single-dash long flags to their GNU form.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return []string{"screenotate"}
	}
	normalized := make([]string, len(args))
	copy(normalized, args)
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"capture-copy", "capture", "api-key-path", "preferences"} {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}
	return normalized
}

func handleRunOnceWithDelegation(req singleinstance.Request, client singleinstance.Client, fallback func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	delegated, _, err := client.TryRunOnce(ctx, req)
	if err != nil && delegated {
		// The resident answered; a refusal is final.
		log.Printf("Resident rejected %s: %v", req.Name(), err)
		fmt.Fprintf(os.Stderr, "%s rejected: %v\n", req.Name(), err)
		return
	}
	if err != nil {
		log.Printf("Delegation error: %v; falling back to standalone", err)
		fallback()
		return
	}
	if delegated {
		log.Printf("Delegated %s to resident", req.Name())
		return
	}
	log.Printf("No resident detected (not delegated), running standalone")
	fallback()
}

// runCaptureOnce runs one interactive session in this process and waits for
// any upload to finish. There is no tray in this mode, so nothing is hidden.
func runCaptureOnce(loadOptions config.LoadOptions, copyMode bool) error {
	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{LoadOptions: loadOptions})
	if err != nil {
		return err
	}
	defer rt.Close()
	defer hotkey.Default.Stop()

	displays, err := screenshot.Displays()
	if err != nil {
		return err
	}
	s, err := selection.New(selection.Options{
		Displays: displays,
		CopyMode: copyMode,
		NewView:  overlay.NewDrag(hotkey.Default).NewView,
		Pointer:  rt.Pointer,
		Capture:  rt.Capture.Run,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	s.Start(ctx)
	select {
	case <-s.Done():
	case <-ctx.Done():
		s.Cancel()
	}
	return nil
}

func runResident(loadOptions config.LoadOptions) error {
	// Load .env early so SINGLEINSTANCE_PORT_* are available for pre-flight
	_, _ = config.LoadWithOptions(loadOptions)
	startPort, _ := singleinstance.PortRange()
	addr := fmt.Sprintf("127.0.0.1:%d", startPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("one is already running on port %d", startPort)
	}
	// We claimed the port; release it so the event loop can re-bind.
	_ = listener.Close()

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:          loadOptions,
		PingLLM:              true,
		ShowBlockingLLMError: true,
	})
	if err != nil {
		return err
	}
	defer rt.Close()
	defer hotkey.Default.Stop()

	cfg := rt.Config
	log.Printf("Hotkeys: capture=%s copy=%s", cfg.Hotkey, cfg.CopyHotkey)

	tooltip := fmt.Sprintf("%s - Press %s to capture", runtimeinit.AppName, cfg.Hotkey)
	loop := eventloop.New(eventloop.Options{
		Displays: screenshot.Displays,
		Views: func() selection.ViewFactory {
			return overlay.NewDrag(hotkey.Default).NewView
		},
		Pointer:        rt.Pointer,
		Capture:        rt.Capture.Run,
		HideApp:        tray.Hide,
		ShowApp:        tray.Show,
		Notifier:       rt.Notifier,
		Server:         singleinstance.NewServer(),
		Tooltip:        tray.UpdateTooltip,
		DefaultTooltip: tooltip,
	})
	loop.StartHotkeys(cfg.Hotkey, cfg.CopyHotkey)

	ctx, cancel := signalContext()
	defer cancel()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(ctx)
		tray.Quit()
	}()

	tray.Run(tray.Menu{
		OnCapture: func() { loop.Trigger(false) },
		OnCopy:    func() { loop.Trigger(true) },
		OnQuit:    cancel,
	})
	cancel()
	if err := <-loopDone; err != nil && err != context.Canceled {
		log.Printf("event loop stopped: %v", err)
		return err
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
