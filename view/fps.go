package view

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/phanxgames/arix"
)

// debugPanel shows frame rate and render counters. The text is refreshed
// every half second.
type debugPanel struct {
	img        *ebiten.Image
	lastUpdate float64
	op         ebiten.DrawImageOptions
}

func (d *debugPanel) update(dt float64, st arix.RenderStats, tree arix.DebugStats) {
	if d.img == nil {
		// Wide enough for two lines of counters.
		d.img = ebiten.NewImage(300, 48)
		d.lastUpdate = 0.5
	}
	d.lastUpdate += dt
	if d.lastUpdate < 0.5 {
		return
	}
	d.lastUpdate = 0

	d.img.Clear()
	d.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(d.img, fmt.Sprintf(
		"FPS: %.1f  TPS: %.1f\ntris %d culled %d clipped %d points %d\nlum %.2f  mounted %d/%d",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		st.Triangles, st.Culled, st.Clipped, st.Points,
		st.Luminance, tree.Mounted, tree.Entities,
	))
}

func (d *debugPanel) draw(dst *ebiten.Image) {
	if d.img == nil {
		return
	}
	d.op.GeoM.Reset()
	d.op.GeoM.Translate(uiPadding, float64(dst.Bounds().Dy())-uiPadding-48)
	dst.DrawImage(d.img, &d.op)
}
