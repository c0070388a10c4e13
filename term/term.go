package term

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/phanxgames/arix"
)

const (
	orbitStep = 0.08 // radians per arrow key press
	dollyIn   = 0.9
	dollyOut  = 1.1
	maxDT     = 0.1
)

// Options configures a terminal session. Every field is optional.
type Options struct {
	// Screen is the terminal to draw on. Nil opens the controlling terminal.
	Screen tcell.Screen
	Logger *slog.Logger
	// Script, if set, is stepped once per frame.
	Script *arix.Script
	// ExitOnScriptEnd stops Run once Script is done.
	ExitOnScriptEnd bool
	// Reload delivers new configurations, typically from arix.WatchConfig.
	Reload <-chan arix.Config
	// ScreenshotDir is where captures are written.
	ScreenshotDir string
}

// App drives a Tree in a terminal: it rasterizes each frame into half-block
// cells and maps keys onto the tree's controller and camera.
type App struct {
	screen   tcell.Screen
	cfg      arix.Config
	tree     *arix.Tree
	cam      *arix.Camera
	renderer *arix.Renderer
	raster   *Raster
	grain    *rand.Rand
	logger   *slog.Logger

	script     *arix.Script
	scriptExit bool
	hooks      arix.ScriptHooks
	reload     <-chan arix.Config
	shotDir    string
	shots      []string

	elapsed float64
	frames  int
	hud     *hud
	debug   bool
}

// New prepares a terminal session for tree. The screen is initialized but
// nothing is drawn until Step or Run.
func New(tree *arix.Tree, cfg arix.Config, opts Options) (*App, error) {
	screen := opts.Screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("term: open screen: %w", err)
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("term: init screen: %w", err)
	}
	screen.HideCursor()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cam := arix.NewCamera(cfg.Camera)
	a := &App{
		screen:     screen,
		cfg:        cfg,
		tree:       tree,
		cam:        cam,
		renderer:   arix.NewRenderer(tree, cam, cfg.Lighting, cfg.Post),
		raster:     NewRaster(1, 1),
		grain:      arix.NewRand(cfg.Seed ^ 0x5eed),
		logger:     logger,
		script:     opts.Script,
		scriptExit: opts.ExitOnScriptEnd,
		reload:     opts.Reload,
		shotDir:    opts.ScreenshotDir,
		hud:        newHUD(),
		debug:      cfg.Debug,
	}
	a.hooks = arix.CameraHooks(cam, a.queueScreenshot)
	return a, nil
}

// Tree returns the tree being drawn.
func (a *App) Tree() *arix.Tree { return a.tree }

// Camera returns the session camera.
func (a *App) Camera() *arix.Camera { return a.cam }

// Raster returns the framebuffer of the last frame.
func (a *App) Raster() *Raster { return a.raster }

// Frames returns the number of frames drawn.
func (a *App) Frames() int { return a.frames }

// Close restores the terminal.
func (a *App) Close() {
	a.screen.Fini()
}

// Run draws at cfg.Term.FPS until ctx is cancelled, the user quits, or the
// script ends with ExitOnScriptEnd set. The terminal is restored on return.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go a.poll(events, done)

	fps := a.cfg.Term.FPS
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if a.HandleEvent(ev) {
				return nil
			}
		case cfg := <-a.reload:
			a.Reload(cfg)
		case now := <-ticker.C:
			dt := min(now.Sub(last).Seconds(), maxDT)
			last = now
			a.Step(dt)
			if a.scriptExit && a.script != nil && a.script.Done() {
				return nil
			}
		}
	}
}

// poll forwards terminal events until the screen is finalized.
func (a *App) poll(events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

// Reload rebuilds the tree from cfg, keeping the scene state and camera.
func (a *App) Reload(cfg arix.Config) {
	cfg.Tree.Detail = a.tree.Config().Detail
	a.tree = a.tree.Rebuild(cfg.Tree, arix.NewRand(cfg.Seed))
	a.renderer.SetTree(a.tree)
	a.renderer.SetLighting(cfg.Lighting)
	a.renderer.SetPost(cfg.Post)
	a.cfg = cfg
	a.logger.Info("[arix] config reloaded", "baubles", len(a.tree.Baubles()))
}

// Step advances the scene by dt seconds and draws one frame.
func (a *App) Step(dt float64) {
	a.elapsed += dt
	f := arix.Frame{DT: dt, Elapsed: a.elapsed}
	if a.script != nil {
		a.script.Step(a.tree.Controller(), a.hooks)
	}
	a.tree.Update(f)
	a.cam.Update(dt)

	cols, rows := a.screen.Size()
	a.raster.Resize(cols, rows*2)
	w, h := a.raster.Size()
	cmds := a.renderer.Build(float64(w), float64(h), dt)
	a.raster.Clear(arix.Background)
	a.raster.Draw(cmds)
	a.raster.Post(a.cfg.Post, a.grain)
	a.flushScreenshots()

	a.blit(cols, rows)
	a.hud.update(dt)
	a.hud.draw(a.screen, a.raster, a.tree.State())
	if a.debug {
		a.hud.drawDebug(a.screen, a.raster, a.renderer.Stats(), dt)
	}
	a.screen.Show()
	a.frames++
}

// blit copies the raster to the screen, two vertical pixels per cell.
func (a *App) blit(cols, rows int) {
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := a.raster.At(x, y*2)
			bot := a.raster.At(x, y*2+1)
			style := tcell.StyleDefault.Foreground(tcellColor(top)).Background(tcellColor(bot))
			a.screen.SetContent(x, y, '▀', nil, style)
		}
	}
}

// HandleEvent applies one terminal event and reports whether the session
// should end.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		return a.handleKey(ev)
	}
	return false
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	ctl := a.tree.Controller()
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		a.cam.Orbit(-orbitStep, 0)
	case tcell.KeyRight:
		a.cam.Orbit(orbitStep, 0)
	case tcell.KeyUp:
		a.cam.Orbit(0, -orbitStep)
	case tcell.KeyDown:
		a.cam.Orbit(0, orbitStep)
	case tcell.KeyRune:
		switch unicode.ToLower(ev.Rune()) {
		case 'q':
			return true
		case 'e', ' ':
			ctl.ToggleExploded()
		case 'm':
			ctl.ToggleMusic()
		case 's':
			ctl.ToggleSpeed()
		case 'r':
			a.cam.ResetView(arix.ResetDuration)
		case '+', '=':
			a.cam.Dolly(dollyIn)
		case '-', '_':
			a.cam.Dolly(dollyOut)
		case 'h':
			a.hud.visible = !a.hud.visible
		case 'd':
			a.debug = !a.debug
		case 'p':
			a.queueScreenshot("terminal")
		}
	}
	return false
}

// queueScreenshot captures the next drawn frame under label.
func (a *App) queueScreenshot(label string) {
	a.shots = append(a.shots, label)
}

func (a *App) flushScreenshots() {
	if len(a.shots) == 0 {
		return
	}
	img := a.raster.Image()
	for _, label := range a.shots {
		path, err := arix.WriteScreenshot(a.shotDir, label, img)
		if err != nil {
			a.logger.Error("[arix] screenshot failed", "label", label, "err", err)
			continue
		}
		a.logger.Info("[arix] screenshot", "path", path)
	}
	a.shots = a.shots[:0]
}

func tcellColor(c arix.Color) tcell.Color {
	return tcell.NewRGBColor(int32(to8(c.R)), int32(to8(c.G)), int32(to8(c.B)))
}
