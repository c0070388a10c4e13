package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/phanxgames/arix"
	"github.com/phanxgames/arix/audio"
	"github.com/phanxgames/arix/term"
	"github.com/phanxgames/arix/view"
	"github.com/spf13/cobra"
)

// session is the state every command shares: config, logger, tree, and
// the reload channel fed by the watcher.
type session struct {
	cfg    arix.Config
	logger *slog.Logger
	tree   *arix.Tree
	reload chan arix.Config
	close  []func()
}

// openSession loads the configuration and builds the tree. Terminal
// sessions tessellate at the terminal detail and log nowhere unless --log
// is given, since stderr shares the screen.
func openSession(ctx context.Context, f *flags, cmd *cobra.Command, terminal bool) (*session, error) {
	out := cmd.ErrOrStderr()
	if terminal && f.logPath == "" {
		out = io.Discard
	}
	logger, closeLog, err := newLogger(f.logPath, out, f.debug)
	if err != nil {
		return nil, err
	}
	s := &session{logger: logger, close: []func(){closeLog}}

	apply := func(cfg arix.Config) arix.Config {
		if cmd.Flags().Changed("seed") {
			cfg.Seed = f.seed
		}
		if f.debug {
			cfg.Debug = true
		}
		if terminal {
			cfg.Tree.Detail = cfg.Term.Detail
		}
		return cfg
	}

	cfg, err := arix.LoadConfig(f.config)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.cfg = apply(cfg)
	s.tree = arix.NewTree(s.cfg.Tree, arix.NewRand(s.cfg.Seed))
	s.tree.SetLogger(logger)
	s.tree.SetDebug(s.cfg.Debug, 0)
	s.tree.Controller().SetLogger(logger)

	if f.watch {
		if f.config == "" {
			s.Close()
			return nil, errors.New("--watch needs --config")
		}
		s.reload = make(chan arix.Config, 1)
		wctx, cancel := context.WithCancel(ctx)
		s.close = append(s.close, cancel)
		go func() {
			err := arix.WatchConfig(wctx, f.config, func(cfg arix.Config, err error) {
				if err != nil {
					logger.Warn("[arix] config reload failed", "err", err)
					return
				}
				s.push(apply(cfg))
			})
			if err != nil {
				logger.Error("[arix] config watch stopped", "err", err)
			}
		}()
	}
	return s, nil
}

// push hands cfg to the frame loop, replacing any reload not yet applied.
func (s *session) push(cfg arix.Config) {
	for {
		select {
		case s.reload <- cfg:
			return
		default:
			select {
			case <-s.reload:
			default:
			}
		}
	}
}

// startAudio attaches the ambience to the controller when enabled. Audio
// failures are logged and the session continues silent.
func (s *session) startAudio() {
	if !s.cfg.Audio.Enabled {
		return
	}
	amb := audio.New(s.cfg.Audio, s.logger)
	if err := amb.Start(); err != nil {
		s.logger.Warn("[arix] audio unavailable", "err", err)
		return
	}
	ctl := s.tree.Controller()
	ctl.AddSink(amb)
	s.close = append(s.close, func() {
		ctl.RemoveSink(amb)
		amb.Close()
	})
}

// Close releases everything the session opened, last first.
func (s *session) Close() {
	for i := len(s.close) - 1; i >= 0; i-- {
		s.close[i]()
	}
	s.close = nil
}

func loadScript(path string) (*arix.Script, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return arix.LoadScript(data)
}

func runWindow(ctx context.Context, f *flags, cmd *cobra.Command) error {
	s, err := openSession(ctx, f, cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()
	s.startAudio()
	return view.Run(s.tree, s.cfg, view.Options{
		Logger:        s.logger,
		Context:       ctx,
		Reload:        s.reload,
		ScreenshotDir: f.shots,
	})
}

func newTermCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "term",
		Short: "Draw the tree in the terminal with half-block cells",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, f, cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()
			s.startAudio()
			app, err := term.New(s.tree, s.cfg, term.Options{
				Logger:        s.logger,
				Reload:        s.reload,
				ScreenshotDir: f.shots,
			})
			if err != nil {
				return err
			}
			return app.Run(ctx)
		},
	}
}

func newHeadlessCmd(f *flags) *cobra.Command {
	var (
		frames     int
		scriptPath string
		width      int
		height     int
		out        string
	)
	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Render frames offscreen and write PNG captures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if frames <= 0 {
				return fmt.Errorf("--frames must be positive, got %d", frames)
			}
			script, err := loadScript(scriptPath)
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), f, cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			dir := f.shots
			if out != "" {
				dir = out
			}
			path, err := renderHeadless(s, script, frames, width, height, dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&frames, "frames", 120, "frames to simulate")
	fl.StringVar(&scriptPath, "script", "", "JSON script to run")
	fl.IntVar(&width, "width", 320, "image width in pixels")
	fl.IntVar(&height, "height", 180, "image height in pixels")
	fl.StringVarP(&out, "out", "o", "", "output directory (defaults to --screenshots)")
	return cmd
}

// renderHeadless steps the scene on a simulated terminal the size of the
// image, so script screenshots and the final capture use the terminal
// rasterizer. It returns the path of the final capture.
func renderHeadless(s *session, script *arix.Script, frames, width, height int, dir string) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("image size must be positive, got %dx%d", width, height)
	}
	screen := tcell.NewSimulationScreen("UTF-8")
	app, err := term.New(s.tree, s.cfg, term.Options{
		Screen:        screen,
		Logger:        s.logger,
		Script:        script,
		ScreenshotDir: dir,
	})
	if err != nil {
		return "", err
	}
	defer app.Close()
	// Two pixels per cell vertically.
	screen.SetSize(width, (height+1)/2)

	dt := 1 / float64(s.cfg.Term.FPS)
	for i := 0; i < frames; i++ {
		app.Step(dt)
	}
	for script != nil && !script.Done() {
		app.Step(dt)
	}
	path, err := arix.WriteScreenshot(dir, "final", app.Raster().Image())
	if err != nil {
		return "", err
	}
	s.logger.Info("[arix] headless render", "frames", app.Frames(), "path", path)
	return path, nil
}
