package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screenotate/src/singleinstance"
)

type stressOptions struct {
	n        int
	mode     string
	deadline time.Duration
}

// tally counts outcomes of concurrent delegation attempts. Against an idle
// resident exactly one attempt should succeed and the rest report Busy.
type tally struct {
	ok, busy, err int32
}

func (t *tally) String() string {
	return fmt.Sprintf("ok=%d busy=%d err=%d", t.ok, t.busy, t.err)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts, os.Stdout)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-delegate",
		Short:         "Fire concurrent capture requests at the resident",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.mode != "capture" && opts.mode != "copy" {
				return fmt.Errorf("unknown mode %q (want capture|copy)", opts.mode)
			}
			start := time.Now()
			t := stress(opts.n, opts.deadline, singleinstance.Request{CopyMode: opts.mode == "copy"}, singleinstance.NewClient)
			fmt.Fprintf(out, "launched=%d %s elapsed=%s\n", opts.n, t, time.Since(start))
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.mode, "mode", "capture", "capture|copy")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

func stress(n int, deadline time.Duration, req singleinstance.Request, newClient func() singleinstance.Client) *tally {
	var wg sync.WaitGroup
	t := &tally{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), deadline)
			defer cancel()
			delegated, _, err := newClient().TryRunOnce(ctx, req)
			switch {
			case err != nil && strings.Contains(strings.ToLower(err.Error()), "busy"):
				atomic.AddInt32(&t.busy, 1)
			case err != nil || !delegated:
				atomic.AddInt32(&t.err, 1)
			default:
				atomic.AddInt32(&t.ok, 1)
			}
		}()
	}
	wg.Wait()
	return t
}
