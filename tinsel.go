package arix

import "math"

// Tinsel geometry and animation constants.
const (
	tinselSteps        = 150
	tinselLoops        = 8
	tinselHeight       = 8.0
	tinselExplodeScale = 3.0
	tinselScaleDamp    = 2.0
	tinselFadeDamp     = 4.0

	// TinselTubeSegments and TinselTubeRadius describe the ribbon tube swept
	// along the spiral.
	TinselTubeSegments = 128
	TinselTubeRadius   = 0.04
	TinselTubeSides    = 8
)

// SpiralCurve returns the 151 control points of the tinsel spiral: eight
// loops over a height of 8 with the radius shrinking from 2.1 to 0.1.
func SpiralCurve() []Vec3 {
	points := make([]Vec3, 0, tinselSteps+1)
	for i := 0; i <= tinselSteps; i++ {
		t := float64(i) / tinselSteps
		y := t * tinselHeight
		r := 2.0*(1-t) + 0.1
		angle := t * math.Pi * 2 * tinselLoops
		points = append(points, Vec3{
			math.Cos(angle) * r,
			y - 0.5,
			math.Sin(angle) * r,
		})
	}
	return points
}

// CatmullRom is an open uniform Catmull-Rom spline through a list of points.
type CatmullRom struct {
	points []Vec3
}

// NewCatmullRom returns a spline through points. At least two points are
// required for a non-degenerate curve.
func NewCatmullRom(points []Vec3) *CatmullRom {
	return &CatmullRom{points: points}
}

// Point returns the curve position at u in [0, 1]. Values outside the range
// are clamped.
func (c *CatmullRom) Point(u float64) Vec3 {
	n := len(c.points)
	switch n {
	case 0:
		return Vec3{}
	case 1:
		return c.points[0]
	}
	u = clamp01(u)
	p := float64(n-1) * u
	i := int(math.Floor(p))
	w := p - float64(i)
	if i >= n-1 {
		i = n - 2
		w = 1
	}

	p0 := c.at(i - 1)
	p1 := c.points[i]
	p2 := c.points[i+1]
	p3 := c.at(i + 2)
	return Vec3{
		catmull(p0.X, p1.X, p2.X, p3.X, w),
		catmull(p0.Y, p1.Y, p2.Y, p3.Y, w),
		catmull(p0.Z, p1.Z, p2.Z, p3.Z, w),
	}
}

// Points samples divisions+1 evenly spaced parameter values.
func (c *CatmullRom) Points(divisions int) []Vec3 {
	if divisions < 1 {
		divisions = 1
	}
	out := make([]Vec3, divisions+1)
	for i := range out {
		out[i] = c.Point(float64(i) / float64(divisions))
	}
	return out
}

// Tangent returns the normalized derivative direction at u, estimated with a
// small central difference.
func (c *CatmullRom) Tangent(u float64) Vec3 {
	const h = 1e-4
	a := c.Point(clamp01(u - h))
	b := c.Point(clamp01(u + h))
	return b.Sub(a).Normalize()
}

// at returns point i, extrapolating past either end by mirroring the
// neighbouring segment.
func (c *CatmullRom) at(i int) Vec3 {
	n := len(c.points)
	switch {
	case i < 0:
		return c.points[0].Add(c.points[0].Sub(c.points[1]))
	case i >= n:
		return c.points[n-1].Add(c.points[n-1].Sub(c.points[n-2]))
	}
	return c.points[i]
}

func catmull(p0, p1, p2, p3, t float64) float64 {
	v0 := (p2 - p0) * 0.5
	v1 := (p3 - p1) * 0.5
	t2 := t * t
	t3 := t * t2
	return (2*p1-2*p2+v0+v1)*t3 + (-3*p1+3*p2-2*v0-v1)*t2 + v0*t + p1
}

// TinselAnimator grows the ribbon isotropically and fades it out while the
// tree is exploded.
type TinselAnimator struct {
	curve *CatmullRom
}

// NewTinselAnimator builds the spiral once; the curve is shared with the
// renderers as the tube centerline.
func NewTinselAnimator() *TinselAnimator {
	return &TinselAnimator{curve: NewCatmullRom(SpiralCurve())}
}

// Curve returns the spiral centerline.
func (a *TinselAnimator) Curve() *CatmullRom { return a.curve }

// Rest returns the resting transform.
func (a *TinselAnimator) Rest() Transform {
	return NewTransform(Vec3{}, Vec3{}, 1)
}

// Targets returns the uniform scale and opacity the ribbon eases toward.
func (a *TinselAnimator) Targets(st *SceneState) (scale, opacity float64) {
	if st.Exploded {
		return tinselExplodeScale, 0
	}
	return 1, 1
}

// Update implements Animator.
func (a *TinselAnimator) Update(t *Transform, f Frame, st *SceneState) {
	if t == nil {
		return
	}
	scale, opacity := a.Targets(st)
	t.Scale = DampVec3(t.Scale, Splat(scale), f.DT, tinselScaleDamp)
	t.Opacity = Damp(t.Opacity, opacity, f.DT, tinselFadeDamp)
}
