package view

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/arix"
)

const (
	discSize = 32 // soft point sprite edge, pixels
	// atlasWidth holds the disc, a transparent gutter, and a white strip for
	// triangles. The gutter keeps linear filtering from mixing the two.
	atlasWidth  = discSize + 6
	atlasHeight = discSize
)

// Source regions inside the atlas, in texels.
var (
	discRegion  = arix.Rect{X: 0, Y: 0, Width: discSize, Height: discSize}
	whiteCenter = [2]float32{discSize + 4, 2}
)

// atlasPixels returns the premultiplied RGBA texels of the point atlas: a
// radial falloff disc on the left and opaque white on the right.
func atlasPixels() []byte {
	pix := make([]byte, atlasWidth*atlasHeight*4)
	r := float64(discSize) / 2
	for y := 0; y < atlasHeight; y++ {
		for x := 0; x < atlasWidth; x++ {
			i := (y*atlasWidth + x) * 4
			var a float64
			switch {
			case x >= discSize+2:
				a = 1
			case x >= discSize:
				// gutter
			default:
				dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
				d := math.Sqrt(dx*dx+dy*dy) / r
				if d < 1 {
					// Core fully lit, halo fading to the rim.
					a = 1 - d*0.5
					if d > 0.6 {
						a *= (1 - d) / 0.4
					}
				}
			}
			v := byte(math.Round(a * 255))
			pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, v
		}
	}
	return pix
}

// batch is one DrawTriangles32 submission.
type batch struct {
	additive bool
	start    int // first index
	count    int
}

// batcher turns sorted render commands into as few DrawTriangles32 calls as
// the blend changes allow. Vertex colors are premultiplied.
type batcher struct {
	atlas   *ebiten.Image
	verts   []ebiten.Vertex
	inds    []uint32
	batches []batch
	triOp   ebiten.DrawTrianglesOptions
}

func (b *batcher) ensureAtlas() *ebiten.Image {
	if b.atlas == nil {
		b.atlas = ebiten.NewImage(atlasWidth, atlasHeight)
		b.atlas.WritePixels(atlasPixels())
	}
	return b.atlas
}

func (b *batcher) reset() {
	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
	b.batches = b.batches[:0]
}

// build fills the vertex and index buffers from cmds. Command order is kept.
func (b *batcher) build(cmds []arix.RenderCommand) {
	b.reset()
	for i := range cmds {
		cmd := &cmds[i]
		b.open(cmd.Additive)
		switch cmd.Type {
		case arix.CommandTriangle:
			b.triangle(cmd)
		case arix.CommandPoint:
			b.point(cmd)
		}
	}
}

// open starts a new batch when the blend differs from the current one.
func (b *batcher) open(additive bool) {
	if n := len(b.batches); n > 0 && b.batches[n-1].additive == additive {
		return
	}
	b.batches = append(b.batches, batch{additive: additive, start: len(b.inds)})
}

func (b *batcher) triangle(cmd *arix.RenderCommand) {
	base := uint32(len(b.verts))
	for _, v := range cmd.V {
		b.verts = append(b.verts, vertex(v.X, v.Y, whiteCenter[0], whiteCenter[1], v.Color))
	}
	b.inds = append(b.inds, base, base+1, base+2)
	b.batches[len(b.batches)-1].count += 3
}

func (b *batcher) point(cmd *arix.RenderCommand) {
	v := cmd.V[0]
	h := cmd.Size / 2
	if h <= 0 {
		return
	}
	x0, y0, x1, y1 := v.X-h, v.Y-h, v.X+h, v.Y+h
	sx0, sy0 := float32(discRegion.X), float32(discRegion.Y)
	sx1, sy1 := sx0+float32(discRegion.Width), sy0+float32(discRegion.Height)

	base := uint32(len(b.verts))
	b.verts = append(b.verts,
		vertex(x0, y0, sx0, sy0, v.Color),
		vertex(x1, y0, sx1, sy0, v.Color),
		vertex(x0, y1, sx0, sy1, v.Color),
		vertex(x1, y1, sx1, sy1, v.Color),
	)
	b.inds = append(b.inds, base, base+1, base+2, base+1, base+3, base+2)
	b.batches[len(b.batches)-1].count += 6
}

// flush submits every batch to target.
func (b *batcher) flush(target *ebiten.Image) {
	atlas := b.ensureAtlas()
	op := &b.triOp
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	op.Filter = ebiten.FilterLinear
	for _, bt := range b.batches {
		if bt.count == 0 {
			continue
		}
		op.Blend = ebiten.BlendSourceOver
		if bt.additive {
			op.Blend = ebiten.BlendLighter
		}
		target.DrawTriangles32(b.verts, b.inds[bt.start:bt.start+bt.count], atlas, op)
	}
}

func vertex(x, y float64, sx, sy float32, c arix.Color) ebiten.Vertex {
	a := float32(c.A)
	return ebiten.Vertex{
		DstX: float32(x), DstY: float32(y),
		SrcX: sx, SrcY: sy,
		ColorR: float32(c.R) * a,
		ColorG: float32(c.G) * a,
		ColorB: float32(c.B) * a,
		ColorA: a,
	}
}
