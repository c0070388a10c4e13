package view

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/arix"
)

// --- Kage shader sources ---
// Inputs are premultiplied; the bright pass un-premultiplies before measuring.

const brightShaderSrc = `//kage:unit pixels
package main

var Threshold float
var Smoothing float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	l := dot(c.rgb, vec3(0.2126, 0.7152, 0.0722))
	m := smoothstep(Threshold, Threshold+Smoothing, l)
	return vec4(c.rgb*m, 1)
}
`

const compositeShaderSrc = `//kage:unit pixels
package main

var BloomIntensity float
var VignetteOffset float
var VignetteDarkness float
var NoiseOpacity float
var Seed float

func hash(p vec2) float {
	return fract(sin(dot(p, vec2(12.9898, 78.233))+Seed) * 43758.5453)
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src).rgb + imageSrc1At(src).rgb*BloomIntensity

	uv := (dst.xy - imageDstOrigin()) / imageDstSize()
	d := length(uv-vec2(0.5)) * (VignetteDarkness + VignetteOffset)
	// Edges are reversed, so smoothstep is written out.
	e0 := 0.8
	e1 := VignetteOffset * 0.799
	t := clamp((d-e0)/(e1-e0), 0, 1)
	c *= t * t * (3 - 2*t)

	c += (hash(dst.xy) - 0.5) * 2 * NoiseOpacity
	return vec4(clamp(c, vec3(0), vec3(1)), 1)
}
`

// brightSmoothing is the width of the bright pass threshold ramp.
const brightSmoothing = 0.025

var (
	brightShader    *ebiten.Shader
	compositeShader *ebiten.Shader
)

func ensureBrightShader() *ebiten.Shader {
	if brightShader == nil {
		s, err := ebiten.NewShader([]byte(brightShaderSrc))
		if err != nil {
			panic("arix: failed to compile bright pass shader: " + err.Error())
		}
		brightShader = s
	}
	return brightShader
}

func ensureCompositeShader() *ebiten.Shader {
	if compositeShader == nil {
		s, err := ebiten.NewShader([]byte(compositeShaderSrc))
		if err != nil {
			panic("arix: failed to compile composite shader: " + err.Error())
		}
		compositeShader = s
	}
	return compositeShader
}

// bloomPasses returns the Kawase iteration count for a bloom radius given as
// a share of the viewport height.
func bloomPasses(radius float64, h int) int {
	px := radius * float64(h) / 10
	if px <= 1 {
		return 1
	}
	return max(int(math.Ceil(math.Log2(px))), 1)
}

// postChain applies bloom, vignette, and grain to the scene image. Offscreen
// images are reused while the viewport size holds.
type postChain struct {
	bright *ebiten.Image
	temps  []*ebiten.Image
	seed   float64

	imgOp    ebiten.DrawImageOptions
	shaderOp ebiten.DrawRectShaderOptions
	uniforms map[string]any
}

func newPostChain() *postChain {
	return &postChain{uniforms: make(map[string]any, 6)}
}

// apply composites scene into dst. With post disabled the scene is copied.
func (p *postChain) apply(cfg arix.PostConfig, scene, dst *ebiten.Image) {
	if !cfg.Enabled {
		p.imgOp.GeoM.Reset()
		p.imgOp.ColorScale.Reset()
		dst.DrawImage(scene, &p.imgOp)
		return
	}
	b := scene.Bounds()
	w, h := b.Dx(), b.Dy()
	p.bright = fit(p.bright, w, h)

	op := &p.shaderOp
	op.Images[0] = scene
	op.Images[1] = nil
	clear(p.uniforms)
	p.uniforms["Threshold"] = float32(cfg.Bloom.Threshold)
	p.uniforms["Smoothing"] = float32(brightSmoothing)
	op.Uniforms = p.uniforms
	p.bright.DrawRectShader(w, h, ensureBrightShader(), op)

	blurred := p.blur(p.bright, bloomPasses(cfg.Bloom.Radius, h))

	p.seed = math.Mod(p.seed+1.618, 1000)
	clear(p.uniforms)
	p.uniforms["BloomIntensity"] = float32(cfg.Bloom.Intensity)
	p.uniforms["VignetteOffset"] = float32(cfg.Vignette.Offset)
	p.uniforms["VignetteDarkness"] = float32(cfg.Vignette.Darkness)
	p.uniforms["NoiseOpacity"] = float32(cfg.Noise.Opacity)
	p.uniforms["Seed"] = float32(p.seed)
	op.Images[0] = scene
	op.Images[1] = blurred
	op.Uniforms = p.uniforms
	dst.DrawRectShader(w, h, ensureCompositeShader(), op)
}

// blur runs passes of Kawase downscale/upscale over src and returns an image
// the size of src holding the result.
func (p *postChain) blur(src *ebiten.Image, passes int) *ebiten.Image {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	for len(p.temps) < passes+1 {
		p.temps = append(p.temps, nil)
	}

	op := &p.imgOp
	op.Filter = ebiten.FilterLinear
	current := src
	cw, ch := w, h
	for i := 0; i < passes; i++ {
		cw, ch = max(cw/2, 1), max(ch/2, 1)
		p.temps[i] = fit(p.temps[i], cw, ch)
		scaleInto(op, current, p.temps[i])
		current = p.temps[i]
	}
	for i := passes - 2; i >= 0; i-- {
		p.temps[i].Clear()
		scaleInto(op, current, p.temps[i])
		current = p.temps[i]
	}
	out := fit(p.temps[passes], w, h)
	p.temps[passes] = out
	scaleInto(op, current, out)
	return out
}

func scaleInto(op *ebiten.DrawImageOptions, src, dst *ebiten.Image) {
	op.GeoM.Reset()
	op.ColorScale.Reset()
	sb, db := src.Bounds(), dst.Bounds()
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	dst.DrawImage(src, op)
}

// fit returns img cleared if it is w×h, or a new image otherwise.
func fit(img *ebiten.Image, w, h int) *ebiten.Image {
	if img != nil {
		b := img.Bounds()
		if b.Dx() == w && b.Dy() == h {
			img.Clear()
			return img
		}
		img.Deallocate()
	}
	return ebiten.NewImage(w, h)
}
