package view

import (
	"image/color"
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/phanxgames/arix"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Overlay metrics in pixels.
const (
	uiPadding     = 32
	buttonRadius  = 24
	buttonGap     = 24
	labelGap      = 16
	titleTracking = 3.6 // 0.3em at 12px
	titleSlide    = 20
	fadeDuration  = 1.5

	hoverScale = 1.05
	pressScale = 0.95
)

var (
	gold     = arix.MustHex("#d4af37")
	emerald  = arix.MustHex("#0e4d3a")
	inactive = arix.MustHex("#9ca3af")
	ink      = arix.MustHex("#05140f")
)

// button is one round control in the bottom-right column.
type button struct {
	control arix.ControlType
	cx, cy  float64
	label   arix.Rect // clickable label area left of the circle
	hover   bool
	pressed bool
	active  bool
	text    string

	scale, vel float64
	spring     harmonica.Spring
	onClick    func()
}

func newButton(control arix.ControlType, onClick func()) *button {
	return &button{
		control: control,
		scale:   1,
		spring:  harmonica.NewSpring(harmonica.FPS(60), 12, 0.6),
		onClick: onClick,
	}
}

// Contains reports whether (x, y) is over the circle or its label.
func (b *button) Contains(x, y float64) bool {
	dx, dy := x-b.cx, y-b.cy
	r := buttonRadius * b.scale
	return dx*dx+dy*dy <= r*r || b.label.Contains(x, y)
}

func (b *button) setHover(on bool)   { b.hover = on }
func (b *button) setPressed(on bool) { b.pressed = on }
func (b *button) click() {
	if b.onClick != nil {
		b.onClick()
	}
}

func (b *button) target() float64 {
	switch {
	case b.pressed:
		return pressScale
	case b.hover:
		return hoverScale
	default:
		return 1
	}
}

// update advances the scale spring by one tick.
func (b *button) update() {
	b.scale, b.vel = b.spring.Update(b.scale, b.vel, b.target())
}

// overlay is the branding, control column, and frame drawn over the scene.
type overlay struct {
	visible bool
	fade    *gween.Tween
	alpha   float64
	buttons [3]*button
	fonts   *fonts
	w, h    int
}

func newOverlay(ctl *arix.Controller) *overlay {
	return &overlay{
		visible: true,
		fade:    gween.New(0, 1, fadeDuration, ease.OutCubic),
		buttons: [3]*button{
			newButton(arix.ControlExplode, ctl.ToggleExploded),
			newButton(arix.ControlMusic, ctl.ToggleMusic),
			newButton(arix.ControlSpeed, ctl.ToggleSpeed),
		},
	}
}

// bind points the buttons at a new controller after a reload.
func (o *overlay) bind(ctl *arix.Controller) {
	o.buttons[0].onClick = ctl.ToggleExploded
	o.buttons[1].onClick = ctl.ToggleMusic
	o.buttons[2].onClick = ctl.ToggleSpeed
}

// targets returns the buttons as pointer targets.
func (o *overlay) targets() []hitTarget {
	if !o.visible {
		return nil
	}
	return []hitTarget{o.buttons[0], o.buttons[1], o.buttons[2]}
}

// layout positions the control column for a w×h viewport.
func (o *overlay) layout(w, h int) {
	o.w, o.h = w, h
	cx := float64(w) - uiPadding - buttonRadius
	for i, b := range o.buttons {
		row := len(o.buttons) - 1 - i
		b.cx = cx
		b.cy = float64(h) - uiPadding - buttonRadius - float64(row)*(2*buttonRadius+buttonGap)
		lw := 120.0
		if o.fonts != nil {
			lw, _ = o.fonts.buttons.Measure(b.text, 0)
		}
		b.label = arix.Rect{
			X:      cx - buttonRadius - labelGap - lw,
			Y:      b.cy - 10,
			Width:  lw + labelGap,
			Height: 20,
		}
	}
}

// sync refreshes labels and highlights from the scene state.
func (o *overlay) sync(st arix.SceneState) {
	o.buttons[0].active = st.Exploded
	o.buttons[0].text = "Explode"
	if st.Exploded {
		o.buttons[0].text = "Assemble"
	}
	o.buttons[1].active = st.MusicPlaying
	o.buttons[1].text = "Ambience"
	fast := st.RotationSpeed > 0.5
	o.buttons[2].active = fast
	o.buttons[2].text = "Slow Rotate"
	if fast {
		o.buttons[2].text = "Fast Rotate"
	}
}

func (o *overlay) update(dt float64, st arix.SceneState) {
	if o.fade != nil {
		v, done := o.fade.Update(float32(dt))
		o.alpha = float64(v)
		if done {
			o.alpha = 1
			o.fade = nil
		}
	}
	o.sync(st)
	if o.w > 0 {
		// Label widths follow the text.
		o.layout(o.w, o.h)
	}
	for _, b := range o.buttons {
		b.update()
	}
}

func (o *overlay) draw(dst *ebiten.Image) {
	if !o.visible {
		return
	}
	w, h := float32(o.w), float32(o.h)
	vector.StrokeRect(dst, 16, 16, w-32, h-32, 1, nrgba(gold, 0.2*o.alpha), true)
	vector.StrokeRect(dst, 24, 24, w-48, h-48, 1, nrgba(gold, 0.1*o.alpha), true)

	if o.fonts != nil {
		y := uiPadding - titleSlide*(1-o.alpha)
		o.fonts.title.Draw(dst, "THE ARIX COLLECTION", uiPadding, y, titleTracking, withAlpha(gold, o.alpha))
		y += 24
		x := o.fonts.script.Draw(dst, "Signature ", uiPadding, y, 0, withAlpha(arix.ColorWhite, o.alpha))
		// Glow behind the accent word.
		glow := withAlpha(emerald.Blend(arix.ColorWhite, 0.3), 0.35*o.alpha)
		for _, d := range [4][2]float64{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			o.fonts.accent.Draw(dst, "Christmas", x+d[0], y+d[1], 0, glow)
		}
		o.fonts.accent.Draw(dst, "Christmas", x, y, 0, withAlpha(emerald.Blend(arix.ColorWhite, 0.15), o.alpha))
	}

	for _, b := range o.buttons {
		o.drawButton(dst, b)
	}
}

func (o *overlay) drawButton(dst *ebiten.Image, b *button) {
	cx, cy := float32(b.cx), float32(b.cy)
	r := float32(buttonRadius * b.scale)
	iconColor := gold
	if b.active {
		vector.FillCircle(dst, cx, cy, r, nrgba(gold, o.alpha), true)
		iconColor = ink
	} else {
		vector.FillCircle(dst, cx, cy, r, nrgba(ink, 0.6*o.alpha), true)
		vector.StrokeCircle(dst, cx, cy, r, 1.5, nrgba(gold, o.alpha), true)
	}
	drawIcon(dst, b, cx, cy, float32(b.scale), nrgba(iconColor, o.alpha))

	if o.fonts == nil {
		return
	}
	fg := inactive
	if b.active || b.hover {
		fg = gold
	}
	lw, lh := o.fonts.buttons.Measure(b.text, 0)
	x := b.cx - buttonRadius - labelGap - lw
	o.fonts.buttons.Draw(dst, b.text, x, b.cy-lh/2, 0, withAlpha(fg, o.alpha))
}

// drawIcon strokes a small glyph for the button's control.
func drawIcon(dst *ebiten.Image, b *button, cx, cy, s float32, c color.Color) {
	line := func(x0, y0, x1, y1 float32) {
		vector.StrokeLine(dst, cx+x0*s, cy+y0*s, cx+x1*s, cy+y1*s, 2, c, true)
	}
	switch b.control {
	case arix.ControlExplode:
		if b.active {
			// Tree silhouette: assemble.
			line(0, -9, -8, 7)
			line(0, -9, 8, 7)
			line(-8, 7, 8, 7)
			return
		}
		for i := 0; i < 8; i++ {
			a := float64(i) * math.Pi / 4
			dx, dy := float32(math.Cos(a)), float32(math.Sin(a))
			line(dx*4, dy*4, dx*9, dy*9)
		}
	case arix.ControlMusic:
		vector.FillCircle(dst, cx-4*s, cy+6*s, 3.5*s, c, true)
		line(-0.5, 6, -0.5, -9)
		line(-0.5, -9, 7, -6)
	case arix.ControlSpeed:
		line(-7, -7, 0, 0)
		line(-7, 7, 0, 0)
		line(0, -7, 7, 0)
		line(0, 7, 7, 0)
	}
}

func withAlpha(c arix.Color, a float64) arix.Color {
	c.A *= a
	return c
}

func nrgba(c arix.Color, a float64) color.NRGBA {
	to8 := func(v float64) uint8 { return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255)) }
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A * a)}
}
