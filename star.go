package arix

import "math"

// Star animation constants.
const (
	starRestY        = 7.8
	starExplodeY     = 14.0
	starExplodeScale = 1.8
	starDamp         = 2.5
	starSpinRate     = 0.8
	starTilt         = 0.15

	// StarRadius is the dodecahedron radius before the mesh's own 1.5 scale.
	StarRadius    = 0.4
	StarMeshScale = 1.5
)

// StarAnimator spins the topper continuously, wobbles it with a clock-driven
// tilt, and shoots it upward while exploded.
type StarAnimator struct{}

// NewStarAnimator returns the topper animator.
func NewStarAnimator() *StarAnimator { return &StarAnimator{} }

// Rest returns the resting transform.
func (a *StarAnimator) Rest() Transform {
	return NewTransform(Vec3{0, starRestY, 0}, Vec3{}, 1)
}

// Targets returns the height and uniform scale the star eases toward.
func (a *StarAnimator) Targets(st *SceneState) (y, scale float64) {
	if st.Exploded {
		return starExplodeY, starExplodeScale
	}
	return starRestY, 1
}

// StarTilt returns the Z rotation at the given elapsed time. It depends only on
// elapsed, never on earlier frames.
func StarTilt(elapsed float64) float64 {
	return math.Sin(elapsed) * starTilt
}

// Update implements Animator.
func (a *StarAnimator) Update(t *Transform, f Frame, st *SceneState) {
	if t == nil {
		return
	}
	t.Rotation.Y += f.DT * starSpinRate
	t.Rotation.Z = StarTilt(f.Elapsed)

	y, scale := a.Targets(st)
	t.Position.Y = Damp(t.Position.Y, y, f.DT, starDamp)
	t.Scale = DampVec3(t.Scale, Splat(scale), f.DT, starDamp)
}
