package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/phanxgames/arix"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

var (
	gold     = arix.MustHex("#d4af37")
	emerald  = arix.MustHex("#0e4d3a")
	inactive = arix.MustHex("#6b7280")
)

// hud draws the branding, control labels, and frame over the scene.
type hud struct {
	visible bool
	fade    *gween.Tween
	alpha   float64
}

func newHUD() *hud {
	return &hud{
		visible: true,
		fade:    gween.New(0, 1, 1.5, ease.OutCubic),
	}
}

func (h *hud) update(dt float64) {
	if h.fade == nil {
		return
	}
	v, done := h.fade.Update(float32(dt))
	h.alpha = float64(v)
	if done {
		h.alpha = 1
		h.fade = nil
	}
}

// controlLabels returns the bottom-right labels and whether each is active.
func controlLabels(st arix.SceneState) ([3]string, [3]bool) {
	explode := "Explode"
	if st.Exploded {
		explode = "Assemble"
	}
	speed := "Slow Rotate"
	fast := st.RotationSpeed > 0.5
	if fast {
		speed = "Fast Rotate"
	}
	return [3]string{
			"[E] " + explode,
			"[M] Ambience",
			"[S] " + speed,
		}, [3]bool{
			st.Exploded,
			st.MusicPlaying,
			fast,
		}
}

func (h *hud) draw(s tcell.Screen, r *Raster, st arix.SceneState) {
	if !h.visible {
		return
	}
	cols, rows := s.Size()
	if cols < 24 || rows < 8 {
		return
	}
	h.frame(s, r, cols, rows)

	// Branding slides down as it fades in.
	top := 2
	if h.alpha < 0.5 {
		top = 1
	}
	h.text(s, r, 3, top, "THE ARIX COLLECTION", gold, true)
	x := h.text(s, r, 3, top+1, "Signature ", arix.ColorWhite, false)
	h.text(s, r, x, top+1, "Christmas", emerald.Blend(arix.ColorWhite, 0.2), true)

	labels, active := controlLabels(st)
	for i, label := range labels {
		fg := inactive
		if active[i] {
			fg = gold
		}
		x := cols - 3 - runewidth.StringWidth(label)
		y := rows - 2 - (len(labels)-i)*2 + 1
		h.text(s, r, x, y, label, fg, active[i])
	}
}

// frame draws the thin gold border inset by one cell.
func (h *hud) frame(s tcell.Screen, r *Raster, cols, rows int) {
	l, t, rt, b := 1, 1, cols-2, rows-2
	put := func(x, y int, ch rune) {
		bg := cellBackground(r, x, y)
		fg := bg.Blend(gold, 0.35*h.alpha)
		s.SetContent(x, y, ch, nil, tcell.StyleDefault.Foreground(tcellColor(fg)).Background(tcellColor(bg)))
	}
	for x := l + 1; x < rt; x++ {
		put(x, t, '─')
		put(x, b, '─')
	}
	for y := t + 1; y < b; y++ {
		put(l, y, '│')
		put(rt, y, '│')
	}
	put(l, t, '┌')
	put(rt, t, '┐')
	put(l, b, '└')
	put(rt, b, '┘')
}

// text writes str starting at (x, y) over the scene and returns the column
// after it.
func (h *hud) text(s tcell.Screen, r *Raster, x, y int, str string, fg arix.Color, bold bool) int {
	for _, ch := range str {
		bg := cellBackground(r, x, y)
		c := bg.Blend(fg, h.alpha)
		style := tcell.StyleDefault.Foreground(tcellColor(c)).Background(tcellColor(bg)).Bold(bold)
		s.SetContent(x, y, ch, nil, style)
		x += runewidth.RuneWidth(ch)
	}
	return x
}

func (h *hud) drawDebug(s tcell.Screen, r *Raster, st arix.RenderStats, dt float64) {
	_, rows := s.Size()
	fps := 0.0
	if dt > 0 {
		fps = 1 / dt
	}
	line := fmt.Sprintf("tris %d  culled %d  points %d  lum %.2f  %.0f fps",
		st.Triangles, st.Culled, st.Points, st.Luminance, fps)
	saved := h.alpha
	h.alpha = 1
	h.text(s, r, 3, rows-3, line, inactive, false)
	h.alpha = saved
}

// cellBackground is the mean of a cell's two pixels.
func cellBackground(r *Raster, x, y int) arix.Color {
	a, b := r.At(x, y*2), r.At(x, y*2+1)
	return arix.Color{R: (a.R + b.R) / 2, G: (a.G + b.G) / 2, B: (a.B + b.B) / 2, A: 1}
}
