package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"screenotate/src/config"
	"screenotate/src/geometry"
	"screenotate/src/history"
	"screenotate/src/llm"
	"screenotate/src/runtimeinit"
	"screenotate/src/screenshot"
	"screenotate/src/selection"
	"screenotate/src/window"
)

const (
	maxFileSizeMB = 10
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type cliOptions struct {
	jsonOutput  bool
	verbose     bool
	apiKeyPath  string
	preferences string

	// ocr
	filePath string
	// capture
	display  int
	rect     string
	copyMode bool
	// history
	limit int
}

func (o *cliOptions) loadOptions() config.LoadOptions {
	return config.LoadOptions{APIKeyPathOverride: o.apiKeyPath, PreferencesFileOverride: o.preferences}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args), os.Stdout)
}

func runWithArgs(args []string, out io.Writer) error {
	if len(args) == 0 {
		args = []string{"screenotate-cli"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts, out)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screenotate-cli",
		Short:         "Headless access to displays, window resolution, captures and history",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Configure logging BEFORE any other operations.
			if opts.verbose {
				log.SetOutput(os.Stderr)
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}
	cmd.SetOut(out)

	pf := cmd.PersistentFlags()
	pf.BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	pf.StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	pf.StringVar(&opts.preferences, "preferences", "", "Path to a .plist or .yaml preferences file")

	cmd.AddCommand(
		newDisplaysCmd(opts, out),
		newWindowsCmd(opts, out),
		newResolveCmd(opts, out),
		newCaptureCmd(opts, out),
		newHistoryCmd(opts, out),
		newOCRCmd(opts, out),
	)
	return cmd
}

func newDisplaysCmd(opts *cliOptions, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "displays",
		Short: "List active displays in global top-left coordinates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			displays, err := screenshot.Displays()
			if err != nil {
				return err
			}
			return writeDisplays(out, displays, opts.jsonOutput)
		},
	}
}

func newWindowsCmd(opts *cliOptions, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "windows",
		Short: "List on-screen windows front to back",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			x11, err := window.NewX11Lister()
			if err != nil {
				return err
			}
			defer x11.Close()
			windows, err := x11.ListOnScreen(cmd.Context())
			if err != nil {
				return err
			}
			return writeWindows(out, windows, opts.jsonOutput)
		},
	}
}

func newResolveCmd(opts *cliOptions, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve X Y",
		Short: "Resolve the window and page under a global point",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[0], args[1])
			if err != nil {
				return err
			}
			rt, err := runtimeinit.Bootstrap(runtimeinit.Options{LoadOptions: opts.loadOptions()})
			if err != nil {
				return err
			}
			defer rt.Close()

			wc := rt.Windows.Resolve(cmd.Context(), p)
			res := resolveResult{WindowTitle: window.Value(wc.Title), AppTitle: window.Value(wc.Owner)}
			if wc.Owner != nil {
				if url, ok := rt.Pages.Resolve(cmd.Context(), *wc.Owner); ok {
					res.URL = url
				}
			}
			return writeResolve(out, res, opts.jsonOutput)
		},
	}
}

func newCaptureCmd(opts *cliOptions, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture a region of one display and save it as a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(cmd.Context(), opts, out)
		},
	}
	cmd.Flags().IntVar(&opts.display, "display", 0, "Display index (see 'displays')")
	cmd.Flags().StringVar(&opts.rect, "rect", "", "Region as x,y,w,h in points, top-left origin within the display")
	cmd.Flags().BoolVar(&opts.copyMode, "copy", false, "Also copy the image to the clipboard")
	_ = cmd.MarkFlagRequired("rect")
	return cmd
}

func newHistoryCmd(opts *cliOptions, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent captures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithOptions(opts.loadOptions())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			repo, err := history.Open(cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer repo.Close()
			records, err := repo.Recent(opts.limit)
			if err != nil {
				return err
			}
			return writeHistory(out, records, opts.jsonOutput, time.Now())
		},
	}
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "Maximum number of records")
	return cmd
}

func newOCRCmd(opts *cliOptions, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ocr",
		Short: "Run OCR on PNG input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithOptions(opts.loadOptions())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if opts.verbose {
				fmt.Fprintf(os.Stderr, "[verbose] Config loaded: Model=%s\n", cfg.Model)
				fmt.Fprintf(os.Stderr, "[verbose] Effective API key path: %s\n", cfg.APIKeyPath)
			}
			if cfg.APIKey == "" {
				return fmt.Errorf("OPENROUTER_API_KEY not found. Checked key file %s and OPENROUTER_API_KEY env var", cfg.APIKeyPath)
			}
			if cfg.Model == "" {
				return fmt.Errorf("MODEL is required in .env file")
			}
			llm.Init(&llm.Config{APIKey: cfg.APIKey, Model: cfg.Model, Providers: cfg.Providers})

			imageData, err := readImage(opts.filePath, os.Stdin)
			if err != nil {
				return err
			}
			return performOCR(cmd.Context(), imageData, opts.filePath, opts.jsonOutput, out)
		},
	}
	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to PNG file (use '-' for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// normalizeLegacyArgs maps single-dash long flags to their GNU form.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	normalized := make([]string, len(args))
	copy(normalized, args)

	long := []string{"file", "json", "verbose", "api-key-path", "preferences", "display", "rect", "copy", "limit"}
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range long {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}
	return normalized
}

func runCapture(ctx context.Context, opts *cliOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	displays, err := screenshot.Displays()
	if err != nil {
		return err
	}
	if opts.display < 0 || opts.display >= len(displays) {
		return fmt.Errorf("display %d out of range (have %d)", opts.display, len(displays))
	}
	d := displays[opts.display]
	local, err := parseRect(opts.rect, d.Bounds.Size.Height)
	if err != nil {
		return err
	}

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{LoadOptions: opts.loadOptions()})
	if err != nil {
		return err
	}
	// Close waits for a pending upload.
	defer rt.Close()

	scripted := &selection.Scripted{}
	s, err := selection.New(selection.Options{
		Displays: displays,
		CopyMode: opts.copyMode,
		NewView:  scripted.NewView,
		Pointer:  rt.Pointer,
		Capture:  rt.Capture.Run,
	})
	if err != nil {
		return err
	}
	s.Start(ctx)
	scripted.Views()[opts.display].Select(local)

	select {
	case <-s.Done():
	case <-ctx.Done():
		s.Cancel()
		return ctx.Err()
	}
	if opts.jsonOutput {
		return json.NewEncoder(out).Encode(map[string]any{"display": d.ID, "rect": local.String(), "copy": opts.copyMode})
	}
	fmt.Fprintf(out, "Captured %s on display %d\n", local, d.ID)
	return nil
}

func parsePoint(xs, ys string) (geometry.Point, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid X %q: %w", xs, err)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid Y %q: %w", ys, err)
	}
	return geometry.Point{X: x, Y: y}, nil
}

// parseRect reads "x,y,w,h" in top-left display-local points and returns the
// bottom-left-origin rectangle a surface would report.
func parseRect(s string, displayHeight float64) (geometry.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.Rect{}, fmt.Errorf("invalid rect %q: want x,y,w,h", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.Rect{}, fmt.Errorf("invalid rect %q: %w", s, err)
		}
		v[i] = f
	}
	r := screenshot.LocalRectFromTopLeft(v[0], v[1], v[2], v[3], displayHeight)
	if r.Empty() {
		return geometry.Rect{}, fmt.Errorf("invalid rect %q: empty region", s)
	}
	return r, nil
}

func readImage(filePath string, stdin io.Reader) ([]byte, error) {
	var imageData []byte
	var err error
	if filePath == "-" {
		imageData, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		imageData, err = os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}
	return imageData, validatePNG(imageData)
}

func validatePNG(imageData []byte) error {
	if len(imageData) == 0 {
		return fmt.Errorf("input file is empty")
	}
	if len(imageData) > maxFileSize {
		return fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	if len(imageData) < len(pngMagic) || !bytes.Equal(imageData[:len(pngMagic)], pngMagic) {
		return fmt.Errorf("input is not a valid PNG file (invalid magic number)")
	}
	return nil
}

type OCRResult struct {
	Text      string  `json:"text"`
	Source    string  `json:"source"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
	CharCount int     `json:"character_count"`
}

func performOCR(ctx context.Context, imageData []byte, sourcePath string, jsonOutput bool, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log.Printf("OCR on %s (%s)", sourcePath, humanize.Bytes(uint64(len(imageData))))

	startTime := time.Now()
	text, err := llm.QueryVision(ctx, imageData)
	elapsed := time.Since(startTime)
	if err != nil {
		return fmt.Errorf("OCR failed: %w", err)
	}
	log.Printf("OCR completed in %v, extracted %d characters", elapsed, len(text))

	if !jsonOutput {
		fmt.Fprint(out, text)
		return nil
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(OCRResult{
		Text:      text,
		Source:    sourcePath,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Duration:  elapsed.Seconds(),
		CharCount: len(text),
	}); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}
