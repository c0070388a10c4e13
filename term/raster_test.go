package term

import (
	"testing"

	"github.com/phanxgames/arix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = arix.Color{R: 1, A: 1}
	blue = arix.Color{B: 1, A: 1}
)

// tri returns a triangle covering the top-left of a 10×10 raster at depth d.
func tri(d float64, c arix.Color) arix.RenderCommand {
	return arix.RenderCommand{
		Type: arix.CommandTriangle,
		V: [3]arix.DrawVertex{
			{X: 0, Y: 0, Depth: d, Color: c},
			{X: 10, Y: 0, Depth: d, Color: c},
			{X: 0, Y: 10, Depth: d, Color: c},
		},
		Depth: d,
	}
}

func assertColor(t *testing.T, want, got arix.Color, msg ...any) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, 1e-9, msg...)
	assert.InDelta(t, want.G, got.G, 1e-9, msg...)
	assert.InDelta(t, want.B, got.B, 1e-9, msg...)
}

func TestRasterClear(t *testing.T) {
	r := NewRaster(4, 2)
	r.Clear(arix.Background)
	w, h := r.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, h)
	assert.Equal(t, arix.Background, r.At(3, 1))
	assert.Equal(t, arix.Color{A: 1}, r.At(4, 0), "out of range reads black")
}

func TestRasterTriangleCoverage(t *testing.T) {
	r := NewRaster(10, 10)
	r.Clear(arix.Background)
	r.Draw([]arix.RenderCommand{tri(5, red)})

	assertColor(t, red, r.At(1, 1), "inside the triangle")
	assert.Equal(t, arix.Background, r.At(9, 9), "outside the triangle")
}

func TestRasterDepthTest(t *testing.T) {
	r := NewRaster(10, 10)
	r.Clear(arix.Background)
	// Near first, then far: the far triangle must not overwrite.
	r.Draw([]arix.RenderCommand{tri(2, red), tri(8, blue)})
	assertColor(t, red, r.At(2, 2))

	r.Clear(arix.Background)
	r.Draw([]arix.RenderCommand{tri(8, blue), tri(2, red)})
	assertColor(t, red, r.At(2, 2))
}

func TestRasterTranslucentBlendsWithoutDepthWrite(t *testing.T) {
	r := NewRaster(10, 10)
	r.Clear(arix.Color{A: 1})
	half := arix.Color{R: 1, A: 0.5}
	r.Draw([]arix.RenderCommand{tri(2, half), tri(8, blue)})

	got := r.At(2, 2)
	// The translucent triangle did not occlude the farther opaque one.
	assert.InDelta(t, 1, got.B, 1e-9)
}

func TestRasterWindingIndependent(t *testing.T) {
	r := NewRaster(10, 10)
	r.Clear(arix.Background)
	c := tri(5, red)
	c.V[1], c.V[2] = c.V[2], c.V[1]
	r.Draw([]arix.RenderCommand{c})
	assertColor(t, red, r.At(1, 1))
}

func TestRasterAdditivePoint(t *testing.T) {
	r := NewRaster(9, 9)
	r.Clear(arix.Color{R: 0.2, A: 1})
	r.Draw([]arix.RenderCommand{{
		Type:     arix.CommandPoint,
		V:        [3]arix.DrawVertex{{X: 4.5, Y: 4.5, Depth: 3, Color: arix.Color{R: 0.5, G: 0.5, A: 1}}},
		Size:     4,
		Additive: true,
	}})
	center := r.At(4, 4)
	assert.Greater(t, center.R, 0.2)
	assert.Greater(t, center.G, 0.0)
	assert.Equal(t, arix.Color{R: 0.2, A: 1}, r.At(0, 0), "outside the point")
}

func TestRasterPointOccluded(t *testing.T) {
	r := NewRaster(10, 10)
	r.Clear(arix.Background)
	r.Draw([]arix.RenderCommand{
		tri(2, red),
		{
			Type:     arix.CommandPoint,
			V:        [3]arix.DrawVertex{{X: 2.5, Y: 2.5, Depth: 9, Color: arix.ColorWhite}},
			Size:     2,
			Additive: true,
		},
	})
	assertColor(t, red, r.At(2, 2))
}

func TestRasterPostDisabled(t *testing.T) {
	r := NewRaster(8, 8)
	r.Clear(red)
	r.Post(arix.PostConfig{Enabled: false, Vignette: arix.VignetteConfig{Darkness: 1}}, nil)
	assert.Equal(t, red, r.At(0, 0))
}

func TestRasterPostVignette(t *testing.T) {
	r := NewRaster(20, 20)
	r.Clear(arix.Color{R: 0.5, G: 0.5, B: 0.5, A: 1})
	cfg := arix.DefaultConfig().Post
	cfg.Bloom.Intensity = 0
	cfg.Noise.Opacity = 0
	r.Post(cfg, nil)
	assert.Less(t, r.At(0, 0).R, r.At(10, 10).R, "corners darker than center")
}

func TestRasterPostBloomSpreads(t *testing.T) {
	r := NewRaster(40, 40)
	r.Clear(arix.Color{A: 1})
	r.color[20*40+20] = arix.ColorWhite
	cfg := arix.DefaultConfig().Post
	cfg.Noise.Opacity = 0
	cfg.Vignette = arix.VignetteConfig{}
	r.Post(cfg, nil)
	assert.Greater(t, r.At(21, 20).R, 0.0, "glow reaches a neighbor")
}

func TestRasterImage(t *testing.T) {
	r := NewRaster(3, 2)
	r.Clear(arix.Color{A: 1})
	r.color[1] = red
	img := r.Image()
	require.Equal(t, 3, img.Bounds().Dx())
	px := img.RGBAAt(1, 0)
	assert.Equal(t, uint8(255), px.R)
	assert.Equal(t, uint8(0), px.G)
	assert.Equal(t, uint8(255), px.A)
}
