// Command arix shows the Arix Signature Christmas tree in a window, in a
// terminal, or renders it headless to PNG.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "arix:", err)
		os.Exit(1)
	}
}

// flags shared by every command.
type flags struct {
	config  string
	watch   bool
	seed    uint64
	debug   bool
	logPath string
	shots   string
}

func newRootCmd() *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:          "arix",
		Short:        "The Arix Collection: an interactive Christmas tree",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWindow(cmd.Context(), &f, cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&f.config, "config", "c", "", "YAML config file")
	pf.BoolVarP(&f.watch, "watch", "w", false, "reload the config file when it changes")
	pf.Uint64Var(&f.seed, "seed", 0, "random seed (overrides the config)")
	pf.BoolVar(&f.debug, "debug", false, "log per-frame timing and show counters")
	pf.StringVar(&f.logPath, "log", "", "write logs to this file instead of stderr")
	pf.StringVar(&f.shots, "screenshots", "", "screenshot directory")

	root.AddCommand(newTermCmd(&f), newHeadlessCmd(&f))
	return root
}

// newLogger returns a text logger writing to path, or to w when path is
// empty. The returned closer releases the file.
func newLogger(path string, w io.Writer, debug bool) (*slog.Logger, func(), error) {
	closer := func() {}
	if path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log: %w", err)
		}
		w = file
		closer = func() { file.Close() }
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}
