package arix

import "math/rand/v2"

// Layer animation rates and offsets.
const (
	layerDamp          = 4.0
	layerExplodeRotate = 2.0
	layerAssembleDamp  = 3.0
	layerSpinRate      = 0.1
	layerSpread        = 1.2
	layerLift          = 1.5
	layerExplodeScale  = 0.95
)

// LayerSpec is the immutable construction-time configuration of one cone
// tier.
type LayerSpec struct {
	Index    int
	Position Vec3
	Rotation Vec3
	Scale    float64
}

// DefaultLayerSpecs returns the eight tiers of the tree, bottom to top.
func DefaultLayerSpecs() []LayerSpec {
	tiers := [...]struct{ y, s, r float64 }{
		{0.0, 1.6, 0},
		{1.0, 1.45, 0.5},
		{2.0, 1.3, 1.0},
		{3.0, 1.15, 1.5},
		{4.0, 1.0, 2.0},
		{5.0, 0.85, 2.5},
		{6.0, 0.7, 3.0},
		{7.0, 0.55, 3.5},
	}
	specs := make([]LayerSpec, len(tiers))
	for i, t := range tiers {
		specs[i] = LayerSpec{
			Index:    i,
			Position: Vec3{0, t.y, 0},
			Rotation: Vec3{0, t.r, 0},
			Scale:    t.s,
		}
	}
	return specs
}

// LayerAnimator eases a tier between its resting pose and a lifted, tilted,
// slowly spinning exploded pose.
type LayerAnimator struct {
	spec   LayerSpec
	jitter Vec3
}

// NewLayerAnimator samples the tier's tilt jitter from rng. The jitter is
// fixed for the animator's lifetime so every explosion has the same shape.
func NewLayerAnimator(spec LayerSpec, rng *rand.Rand) *LayerAnimator {
	// Y is drawn to keep the sample sequence stable but is not used: the
	// exploded tier spins freely around Y instead.
	jitter := Vec3{
		X: (randFloat(rng) - 0.5) * 0.2,
		Y: (randFloat(rng) - 0.5) * 0.5,
		Z: (randFloat(rng) - 0.5) * 0.2,
	}
	return &LayerAnimator{spec: spec, jitter: jitter}
}

// Spec returns the tier's immutable configuration.
func (a *LayerAnimator) Spec() LayerSpec { return a.spec }

// Jitter returns the per-tier tilt offsets applied while exploded.
func (a *LayerAnimator) Jitter() Vec3 { return a.jitter }

// Rest returns the resting transform.
func (a *LayerAnimator) Rest() Transform {
	return NewTransform(a.spec.Position, a.spec.Rotation, a.spec.Scale)
}

// TargetY returns the height the tier eases toward.
func (a *LayerAnimator) TargetY(st *SceneState) float64 {
	if st.Exploded {
		return a.spec.Position.Y + float64(a.spec.Index)*layerSpread + layerLift
	}
	return a.spec.Position.Y
}

// TargetScale returns the uniform scale the tier eases toward.
func (a *LayerAnimator) TargetScale(st *SceneState) float64 {
	if st.Exploded {
		return a.spec.Scale * layerExplodeScale
	}
	return a.spec.Scale
}

// Update implements Animator. Y and scale ease per component at one rate;
// rotation is eased per axis, except Y which free-spins while exploded.
func (a *LayerAnimator) Update(t *Transform, f Frame, st *SceneState) {
	if t == nil {
		return
	}
	dt := f.DT

	t.Position.Y = Damp(t.Position.Y, a.TargetY(st), dt, layerDamp)
	s := Damp(t.Scale.X, a.TargetScale(st), dt, layerDamp)
	t.Scale = Splat(s)

	rest := a.spec.Rotation
	if st.Exploded {
		t.Rotation.X = Damp(t.Rotation.X, rest.X+a.jitter.X, dt, layerExplodeRotate)
		t.Rotation.Z = Damp(t.Rotation.Z, rest.Z+a.jitter.Z, dt, layerExplodeRotate)
		t.Rotation.Y += dt * layerSpinRate
		return
	}
	t.Rotation.X = Damp(t.Rotation.X, rest.X, dt, layerAssembleDamp)
	t.Rotation.Z = Damp(t.Rotation.Z, rest.Z, dt, layerAssembleDamp)
	t.Rotation.Y = Damp(t.Rotation.Y, rest.Y, dt, layerAssembleDamp)
}
