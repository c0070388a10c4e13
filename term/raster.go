package term

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/phanxgames/arix"
)

// Raster is a small software framebuffer with a depth buffer. It fills the
// renderer's commands into pixels; the terminal shows two pixels per cell.
type Raster struct {
	w, h  int
	color []arix.Color
	// depth holds 1/z of the nearest opaque surface; 0 is empty.
	depth []float64

	scratch []arix.Color
}

// NewRaster allocates a w×h raster.
func NewRaster(w, h int) *Raster {
	r := &Raster{}
	r.Resize(w, h)
	return r
}

// Resize reallocates the buffers if the size changed.
func (r *Raster) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if w == r.w && h == r.h {
		return
	}
	r.w, r.h = w, h
	r.color = make([]arix.Color, w*h)
	r.depth = make([]float64, w*h)
	r.scratch = make([]arix.Color, w*h)
}

// Size returns the raster dimensions in pixels.
func (r *Raster) Size() (w, h int) { return r.w, r.h }

// Clear fills the color buffer with bg and empties the depth buffer.
func (r *Raster) Clear(bg arix.Color) {
	for i := range r.color {
		r.color[i] = bg
		r.depth[i] = 0
	}
}

// At returns the pixel at (x, y). Out-of-range reads return black.
func (r *Raster) At(x, y int) arix.Color {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return arix.Color{A: 1}
	}
	return r.color[y*r.w+x]
}

// Draw fills cmds in order. Commands are expected back to front, as
// Renderer.Build returns them.
func (r *Raster) Draw(cmds []arix.RenderCommand) {
	for i := range cmds {
		c := &cmds[i]
		switch c.Type {
		case arix.CommandTriangle:
			r.triangle(c)
		case arix.CommandPoint:
			r.point(c)
		}
	}
}

// triangle scan-converts c with edge functions at pixel centers. Depth is
// tested on interpolated 1/z, which is linear in screen space.
func (r *Raster) triangle(c *arix.RenderCommand) {
	v0, v1, v2 := c.V[0], c.V[1], c.V[2]
	area := edge(v0.X, v0.Y, v1.X, v1.Y, v2.X, v2.Y)
	if area == 0 {
		return
	}
	minX := max(int(math.Floor(min(v0.X, v1.X, v2.X))), 0)
	maxX := min(int(math.Ceil(max(v0.X, v1.X, v2.X))), r.w-1)
	minY := max(int(math.Floor(min(v0.Y, v1.Y, v2.Y))), 0)
	maxY := min(int(math.Ceil(max(v0.Y, v1.Y, v2.Y))), r.h-1)
	if minX > maxX || minY > maxY {
		return
	}
	iz0, iz1, iz2 := 1/v0.Depth, 1/v1.Depth, 1/v2.Depth
	opaque := v0.Color.A >= 0.99 && v1.Color.A >= 0.99 && v2.Color.A >= 0.99

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edge(v1.X, v1.Y, v2.X, v2.Y, px, py) / area
			w1 := edge(v2.X, v2.Y, v0.X, v0.Y, px, py) / area
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			iz := w0*iz0 + w1*iz1 + w2*iz2
			i := y*r.w + x
			if iz <= r.depth[i] {
				continue
			}
			col := arix.Color{
				R: w0*v0.Color.R + w1*v1.Color.R + w2*v2.Color.R,
				G: w0*v0.Color.G + w1*v1.Color.G + w2*v2.Color.G,
				B: w0*v0.Color.B + w1*v1.Color.B + w2*v2.Color.B,
				A: w0*v0.Color.A + w1*v1.Color.A + w2*v2.Color.A,
			}
			if opaque {
				col.A = 1
				r.color[i] = col
				r.depth[i] = iz
				continue
			}
			r.color[i] = over(r.color[i], col)
		}
	}
}

// point draws a round point, depth tested but never depth written.
func (r *Raster) point(c *arix.RenderCommand) {
	v := c.V[0]
	if v.Depth <= 0 {
		return
	}
	iz := 1 / v.Depth
	rad := max(c.Size/2, 0.5)
	minX := max(int(math.Floor(v.X-rad)), 0)
	maxX := min(int(math.Ceil(v.X+rad)), r.w-1)
	minY := max(int(math.Floor(v.Y-rad)), 0)
	maxY := min(int(math.Ceil(v.Y+rad)), r.h-1)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) + 0.5 - v.X
			dy := float64(y) + 0.5 - v.Y
			d := math.Sqrt(dx*dx + dy*dy)
			if d > rad {
				continue
			}
			i := y*r.w + x
			if iz <= r.depth[i] {
				continue
			}
			col := v.Color
			// Soft edge.
			col.A *= 1 - d/rad*0.5
			if c.Additive {
				r.color[i] = r.color[i].Add(col.Scale(col.A)).Clamped()
			} else {
				r.color[i] = over(r.color[i], col)
			}
		}
	}
}

// Post applies the fixed post stack in place: bloom, vignette, and grain.
// rng supplies the grain; nil skips it.
func (r *Raster) Post(cfg arix.PostConfig, rng *rand.Rand) {
	if !cfg.Enabled {
		return
	}
	if cfg.Bloom.Intensity > 0 {
		r.bloom(cfg.Bloom)
	}
	for y := 0; y < r.h; y++ {
		v := (float64(y) + 0.5) / float64(r.h)
		for x := 0; x < r.w; x++ {
			u := (float64(x) + 0.5) / float64(r.w)
			i := y*r.w + x
			c := r.color[i].Scale(cfg.Vignette.Factor(u, v))
			if rng != nil && cfg.Noise.Opacity > 0 {
				c = cfg.Noise.Grain(c, rng.Float64())
			}
			r.color[i] = c
		}
	}
}

// bloom adds a blurred bright-pass of the frame back onto itself.
func (r *Raster) bloom(cfg arix.BloomConfig) {
	for i, c := range r.color {
		r.scratch[i] = cfg.BrightPass(c)
	}
	// Radius is a fraction of a tenth of the frame height.
	rad := max(int(cfg.Radius*float64(r.h)/10), 1)
	blurH(r.scratch, r.w, r.h, rad)
	blurV(r.scratch, r.w, r.h, rad)
	for i := range r.color {
		r.color[i] = r.color[i].Add(r.scratch[i].Scale(cfg.Intensity)).Clamped()
	}
}

// Image converts the color buffer to an opaque RGBA image.
func (r *Raster) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.w, r.h))
	for y := 0; y < r.h; y++ {
		for x := 0; x < r.w; x++ {
			img.SetRGBA(x, y, toRGBA(r.color[y*r.w+x]))
		}
	}
	return img
}

func toRGBA(c arix.Color) color.RGBA {
	return color.RGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: 255}
}

func to8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func edge(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// over composites src onto an opaque dst with src's alpha.
func over(dst, src arix.Color) arix.Color {
	a := src.A
	return arix.Color{
		R: dst.R + (src.R-dst.R)*a,
		G: dst.G + (src.G-dst.G)*a,
		B: dst.B + (src.B-dst.B)*a,
		A: 1,
	}
}

// blurH and blurV are one-dimensional box blurs with a running sum.
func blurH(buf []arix.Color, w, h, rad int) {
	row := make([]arix.Color, w)
	n := float64(2*rad + 1)
	for y := 0; y < h; y++ {
		copy(row, buf[y*w:(y+1)*w])
		var sum arix.Color
		for k := -rad; k <= rad; k++ {
			sum = sum.Add(row[clampInt(k, 0, w-1)])
		}
		for x := 0; x < w; x++ {
			buf[y*w+x] = sum.Scale(1 / n)
			sum = sum.Add(row[clampInt(x+rad+1, 0, w-1)]).Add(row[clampInt(x-rad, 0, w-1)].Scale(-1))
		}
	}
}

func blurV(buf []arix.Color, w, h, rad int) {
	col := make([]arix.Color, h)
	n := float64(2*rad + 1)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = buf[y*w+x]
		}
		var sum arix.Color
		for k := -rad; k <= rad; k++ {
			sum = sum.Add(col[clampInt(k, 0, h-1)])
		}
		for y := 0; y < h; y++ {
			buf[y*w+x] = sum.Scale(1 / n)
			sum = sum.Add(col[clampInt(y+rad+1, 0, h-1)]).Add(col[clampInt(y-rad, 0, h-1)].Scale(-1))
		}
	}
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
