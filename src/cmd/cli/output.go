package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"screenotate/src/geometry"
	"screenotate/src/history"
	"screenotate/src/window"
)

type resolveResult struct {
	WindowTitle string `json:"window_title,omitempty"`
	AppTitle    string `json:"app_title,omitempty"`
	URL         string `json:"url,omitempty"`
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeDisplays(out io.Writer, displays []geometry.Display, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(out, displays)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tID\tBOUNDS")
	for i, d := range displays {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", i, d.ID, d.Bounds)
	}
	return tw.Flush()
}

func writeWindows(out io.Writer, windows []window.Info, jsonOutput bool) error {
	if jsonOutput {
		type row struct {
			Bounds string `json:"bounds"`
			Layer  int    `json:"layer"`
			Title  string `json:"title,omitempty"`
			Owner  string `json:"owner,omitempty"`
		}
		rows := make([]row, 0, len(windows))
		for _, w := range windows {
			rows = append(rows, row{w.Bounds.String(), w.Layer, window.Value(w.Title), window.Value(w.Owner)})
		}
		return writeJSON(out, rows)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LAYER\tOWNER\tTITLE\tBOUNDS")
	for _, w := range windows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", w.Layer, window.Value(w.Owner), window.Value(w.Title), w.Bounds)
	}
	return tw.Flush()
}

func writeResolve(out io.Writer, r resolveResult, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(out, r)
	}
	fmt.Fprintf(out, "window: %s\napp:    %s\nurl:    %s\n", orNone(r.WindowTitle), orNone(r.AppTitle), orNone(r.URL))
	return nil
}

func writeHistory(out io.Writer, records []history.Record, jsonOutput bool, now time.Time) error {
	if jsonOutput {
		return writeJSON(out, records)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tDESTINATION\tFILE\tLINK")
	for _, r := range records {
		dest := r.Destination
		if r.FellBack {
			dest += " (fallback)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", humanize.RelTime(r.CreatedAt, now, "ago", "from now"), dest, r.Filename, orNone(r.ShareURL))
	}
	return tw.Flush()
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
