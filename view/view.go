// Package view draws a Tree in a desktop or browser window with Ebitengine.
// Geometry is batched into DrawTriangles32 calls, post-processing runs as
// Kage shaders, and the control overlay is drawn on top.
package view

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/arix"
)

const (
	keyOrbitRate = 1.5 // radians per second while an arrow key is held
	dollyIn      = 0.9
	dollyOut     = 1.1
)

// Options configures a window session. Every field is optional.
type Options struct {
	Logger *slog.Logger
	// Context ends the session when cancelled.
	Context context.Context
	// Script, if set, is stepped once per tick.
	Script *arix.Script
	// ExitOnScriptEnd closes the window once Script is done.
	ExitOnScriptEnd bool
	// Reload delivers new configurations, typically from arix.WatchConfig.
	Reload <-chan arix.Config
	// ScreenshotDir is where captures are written.
	ScreenshotDir string
}

// Game implements ebiten.Game for a Tree.
type Game struct {
	cfg      arix.Config
	tree     *arix.Tree
	cam      *arix.Camera
	renderer *arix.Renderer
	logger   *slog.Logger
	ctx      context.Context

	script     *arix.Script
	scriptExit bool
	hooks      arix.ScriptHooks
	reload     <-chan arix.Config
	shotDir    string
	shots      []string

	input   *input
	orbit   orbitDamper
	overlay *overlay
	debug   bool
	panel   debugPanel

	batch batcher
	post  *postChain
	scene *ebiten.Image
	final *ebiten.Image
	w, h  int

	elapsed float64
	ticks   int
	cmds    []arix.RenderCommand
	dt      float64
}

// NewGame prepares a window session for tree. Fonts are parsed here; no
// GPU work happens until the first Draw.
func NewGame(tree *arix.Tree, cfg arix.Config, opts Options) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tps := cfg.Window.TPS
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	cam := arix.NewCamera(cfg.Camera)
	g := &Game{
		cfg:        cfg,
		tree:       tree,
		cam:        cam,
		renderer:   arix.NewRenderer(tree, cam, cfg.Lighting, cfg.Post),
		logger:     logger,
		ctx:        ctx,
		script:     opts.Script,
		scriptExit: opts.ExitOnScriptEnd,
		reload:     opts.Reload,
		shotDir:    opts.ScreenshotDir,
		overlay:    newOverlay(tree.Controller()),
		debug:      cfg.Debug,
		post:       newPostChain(),
		dt:         1 / float64(tps),
	}
	g.input = newInput(func(dx, dy float64) { g.orbit.add(dx, dy, float64(g.h)) })
	g.hooks = arix.CameraHooks(cam, g.queueScreenshot)
	g.hooks.Click = g.input.InjectClick
	g.hooks.Drag = g.input.InjectDrag

	f, err := loadFonts(1)
	if err != nil {
		return nil, err
	}
	g.overlay.fonts = f
	return g, nil
}

// Tree returns the tree being drawn.
func (g *Game) Tree() *arix.Tree { return g.tree }

// Camera returns the session camera.
func (g *Game) Camera() *arix.Camera { return g.cam }

// Ticks returns the number of updates run.
func (g *Game) Ticks() int { return g.ticks }

// InjectClick queues a pointer click at screen coordinates.
func (g *Game) InjectClick(x, y float64) { g.input.InjectClick(x, y) }

// InjectDrag queues a pointer drag across frames ticks.
func (g *Game) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	g.input.InjectDrag(fromX, fromY, toX, toY, frames)
}

// Reload rebuilds the tree from cfg, keeping the scene state and camera.
func (g *Game) Reload(cfg arix.Config) {
	g.tree = g.tree.Rebuild(cfg.Tree, arix.NewRand(cfg.Seed))
	g.renderer.SetTree(g.tree)
	g.renderer.SetLighting(cfg.Lighting)
	g.renderer.SetPost(cfg.Post)
	g.overlay.bind(g.tree.Controller())
	g.cfg = cfg
	g.logger.Info("[arix] config reloaded", "baubles", len(g.tree.Baubles()))
}

// Update advances the scene by one tick.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	select {
	case cfg := <-g.reload:
		g.Reload(cfg)
	default:
	}
	if g.handleKeys() {
		return ebiten.Termination
	}

	g.input.targets = g.overlay.targets()
	if !g.input.processInjected() {
		g.input.processMouse()
	}
	if g.input.Hovering() {
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	} else {
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.cam.Dolly(math.Pow(wheelDolly, wy))
	}
	g.step(g.dt)

	if g.scriptExit && g.script != nil && g.script.Done() && len(g.shots) == 0 {
		return ebiten.Termination
	}
	return nil
}

// step runs everything in a tick that does not read devices.
func (g *Game) step(dt float64) {
	g.elapsed += dt
	if g.script != nil {
		g.script.Step(g.tree.Controller(), g.hooks)
	}
	if !g.orbit.idle() {
		g.cam.Orbit(g.orbit.step())
	}
	g.tree.Update(arix.Frame{DT: dt, Elapsed: g.elapsed})
	g.cam.Update(dt)
	g.overlay.update(dt, g.tree.State())
	if g.debug {
		g.panel.update(dt, g.renderer.Stats(), g.tree.DebugStats())
	}
	g.ticks++
}

// handleKeys applies keyboard shortcuts and reports whether to quit.
func (g *Game) handleKeys() bool {
	ctl := g.tree.Controller()
	pressed := inpututil.IsKeyJustPressed
	switch {
	case pressed(ebiten.KeyEscape), pressed(ebiten.KeyQ):
		return true
	case pressed(ebiten.KeyE), pressed(ebiten.KeySpace):
		ctl.ToggleExploded()
	case pressed(ebiten.KeyM):
		ctl.ToggleMusic()
	case pressed(ebiten.KeyS):
		ctl.ToggleSpeed()
	case pressed(ebiten.KeyR):
		g.cam.ResetView(arix.ResetDuration)
	case pressed(ebiten.KeyH):
		g.overlay.visible = !g.overlay.visible
	case pressed(ebiten.KeyD), pressed(ebiten.KeyF3):
		g.debug = !g.debug
	case pressed(ebiten.KeyP), pressed(ebiten.KeyF12):
		g.queueScreenshot("window")
	case pressed(ebiten.KeyF11):
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	case pressed(ebiten.KeyEqual), pressed(ebiten.KeyNumpadAdd):
		g.cam.Dolly(dollyIn)
	case pressed(ebiten.KeyMinus), pressed(ebiten.KeyNumpadSubtract):
		g.cam.Dolly(dollyOut)
	}

	step := keyOrbitRate * g.dt
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.cam.Orbit(-step, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.cam.Orbit(step, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.cam.Orbit(0, -step)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.cam.Orbit(0, step)
	}
	return false
}

// Draw renders the scene, post chain, and overlay.
func (g *Game) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	g.scene = fit(g.scene, w, h)
	g.final = fit(g.final, w, h)

	g.scene.Fill(nrgba(arix.Background, 1))
	g.cmds = g.renderer.Build(float64(w), float64(h), g.dt)
	g.batch.build(g.cmds)
	g.batch.flush(g.scene)

	g.post.apply(g.renderer.Post(), g.scene, g.final)
	g.overlay.draw(g.final)
	if g.debug {
		g.panel.draw(g.final)
	}
	g.flushScreenshots()
	screen.DrawImage(g.final, nil)
}

// Layout keeps the logical size equal to the window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.overlay.layout(g.w, g.h)
	}
	return outsideWidth, outsideHeight
}

func (g *Game) queueScreenshot(label string) {
	g.shots = append(g.shots, label)
}

func (g *Game) flushScreenshots() {
	if len(g.shots) == 0 {
		return
	}
	b := g.final.Bounds()
	img := image.NewRGBA(b)
	g.final.ReadPixels(img.Pix)
	unpremultiply(img.Pix)
	for _, label := range g.shots {
		path, err := arix.WriteScreenshot(g.shotDir, label, img)
		if err != nil {
			g.logger.Error("[arix] screenshot failed", "label", label, "err", err)
			continue
		}
		g.logger.Info("[arix] screenshot", "path", path)
	}
	g.shots = g.shots[:0]
}

// unpremultiply converts premultiplied RGBA bytes to straight alpha in place.
func unpremultiply(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := pix[i+3]
		if a == 0 || a == 255 {
			continue
		}
		pix[i] = uint8(min(int(pix[i])*255/int(a), 255))
		pix[i+1] = uint8(min(int(pix[i+1])*255/int(a), 255))
		pix[i+2] = uint8(min(int(pix[i+2])*255/int(a), 255))
	}
}

// Run opens a window and draws tree until it is closed, the user quits, or
// the script ends with ExitOnScriptEnd set.
func Run(tree *arix.Tree, cfg arix.Config, opts Options) error {
	g, err := NewGame(tree, cfg, opts)
	if err != nil {
		return err
	}
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Window.Fullscreen)
	if cfg.Window.TPS > 0 {
		ebiten.SetTPS(cfg.Window.TPS)
	}
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
