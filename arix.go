package arix

import (
	"fmt"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the neutral tint.
var ColorWhite = Color{1, 1, 1, 1}

// ParseHexColor parses a CSS-style hex color ("#d4af37" or "#fff") into an
// opaque Color.
func ParseHexColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{R: c.R, G: c.G, B: c.B, A: 1}, nil
}

// MustHex is ParseHexColor for compile-time constants. Panics on bad input.
func MustHex(s string) Color {
	c, err := ParseHexColor(s)
	if err != nil {
		panic("arix: " + err.Error())
	}
	return c
}

// Hex formats the color as "#rrggbb", dropping alpha.
func (c Color) Hex() string {
	return colorful.Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}.Hex()
}

// Scale multiplies the RGB channels by f, leaving alpha untouched.
func (c Color) Scale(f float64) Color {
	return Color{c.R * f, c.G * f, c.B * f, c.A}
}

// Add sums the RGB channels of c and o. Alpha is taken from c.
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B, c.A}
}

// Mul multiplies c by o channel-wise (RGB only).
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A}
}

// Clamped returns c with every channel clamped to [0, 1].
func (c Color) Clamped() Color {
	return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B), clamp01(c.A)}
}

// Blend mixes c toward o by t in CIE-Lab space.
func (c Color) Blend(o Color, t float64) Color {
	a := colorful.Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
	b := colorful.Color{R: clamp01(o.R), G: clamp01(o.G), B: clamp01(o.B)}
	m := a.BlendLab(b, clamp01(t)).Clamped()
	return Color{m.R, m.G, m.B, lerp(c.A, o.A, t)}
}

// Luminance returns the Rec. 709 relative luminance of the RGB channels.
func (c Color) Luminance() float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// Vec3 is a 3D vector used for positions, rotations (Euler radians), scales,
// and directions throughout the API. Y is up. The arithmetic is mgl64's;
// the struct form keeps config files and call sites readable.
type Vec3 struct {
	X, Y, Z float64
}

// Splat returns a vector with all three components set to v.
func Splat(v float64) Vec3 { return Vec3{v, v, v} }

func (v Vec3) gl() mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

func vec3(g mgl64.Vec3) Vec3 { return Vec3{g[0], g[1], g[2]} }

func (v Vec3) Add(o Vec3) Vec3      { return vec3(v.gl().Add(o.gl())) }
func (v Vec3) Sub(o Vec3) Vec3      { return vec3(v.gl().Sub(o.gl())) }
func (v Vec3) Scale(f float64) Vec3 { return vec3(v.gl().Mul(f)) }
func (v Vec3) Dot(o Vec3) float64   { return v.gl().Dot(o.gl()) }
func (v Vec3) Len() float64         { return v.gl().Len() }
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return vec3(v.gl().Add(o.gl().Sub(v.gl()).Mul(t)))
}

// Cross returns the cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 { return vec3(v.gl().Cross(o.gl())) }

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vec3) Normalize() Vec3 {
	if v == (Vec3{}) {
		return v
	}
	return vec3(v.gl().Normalize())
}

// Range is a general-purpose min/max range.
type Range struct {
	Min, Max float64
}

// Random returns a value in [Min, Max) drawn from rng. A nil rng uses the
// package-level source.
func (r Range) Random(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + randFloat(rng)*(r.Max-r.Min)
}

// Rect is an axis-aligned screen rectangle with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

func randFloat(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}

// NewRand returns a PCG-backed generator for the given seed. Trees built from
// equal seeds are identical.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
