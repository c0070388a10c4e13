package arix

import (
	"math"
	"testing"
)

func explodedState() *SceneState {
	st := DefaultSceneState()
	st.Exploded = true
	return &st
}

// --- layer ---

func TestLayerExplodeFullStep(t *testing.T) {
	spec := DefaultLayerSpecs()[0]
	a := NewLayerAnimator(spec, NewRand(1))
	tr := a.Rest()
	a.Update(&tr, Frame{DT: 1, Elapsed: 1}, explodedState())

	// dt*k clamps to 1, so the first step lands on the target.
	assertNear(t, "y", tr.Position.Y, 1.5)
	assertNear(t, "scale", tr.Scale.X, 1.6*0.95)
	assertNear(t, "rot.x", tr.Rotation.X, a.Jitter().X)
	assertNear(t, "rot.z", tr.Rotation.Z, a.Jitter().Z)
	assertNear(t, "rot.y", tr.Rotation.Y, spec.Rotation.Y+0.1)
}

func TestLayerTargetYUsesIndex(t *testing.T) {
	specs := DefaultLayerSpecs()
	if len(specs) != 8 {
		t.Fatalf("layers = %d, want 8", len(specs))
	}
	a := NewLayerAnimator(specs[3], NewRand(1))
	assertNear(t, "target", a.TargetY(explodedState()), 3+3*1.2+1.5)
	st := DefaultSceneState()
	assertNear(t, "rest", a.TargetY(&st), 3)
}

func TestLayerJitterDeterministic(t *testing.T) {
	spec := DefaultLayerSpecs()[2]
	a := NewLayerAnimator(spec, NewRand(42))
	b := NewLayerAnimator(spec, NewRand(42))
	if a.Jitter() != b.Jitter() {
		t.Errorf("jitter differs for equal seeds: %+v vs %+v", a.Jitter(), b.Jitter())
	}
	j := a.Jitter()
	if math.Abs(j.X) > 0.1 || math.Abs(j.Z) > 0.1 {
		t.Errorf("jitter = %+v, want |x|,|z| <= 0.1", j)
	}
}

func TestLayerJitterRepeatsAcrossCycles(t *testing.T) {
	spec := DefaultLayerSpecs()[2]
	a := NewLayerAnimator(spec, NewRand(42))
	j := a.Jitter()
	tr := a.Rest()
	exploded, assembled := explodedState(), DefaultSceneState()
	f := Frame{DT: 1.0 / 60}

	var first Vec3
	for cycle := 0; cycle < 4; cycle++ {
		// Ten seconds exploded also spins the tier well past a full radian.
		for i := 0; i < 600; i++ {
			a.Update(&tr, f, exploded)
		}
		assertNearTol(t, "rot.x", tr.Rotation.X, spec.Rotation.X+j.X, 1e-6)
		assertNearTol(t, "rot.z", tr.Rotation.Z, spec.Rotation.Z+j.Z, 1e-6)
		if cycle == 0 {
			first = tr.Rotation
		} else {
			assertNearTol(t, "cycle rot.x", tr.Rotation.X, first.X, 1e-9)
			assertNearTol(t, "cycle rot.z", tr.Rotation.Z, first.Z, 1e-9)
		}
		if a.Jitter() != j {
			t.Fatalf("cycle %d: jitter changed to %+v", cycle, a.Jitter())
		}
		for i := 0; i < 600; i++ {
			a.Update(&tr, f, &assembled)
		}
		assertNearTol(t, "rest rot.x", tr.Rotation.X, spec.Rotation.X, 1e-6)
	}
}

func TestLayerAssembleReturnsToRest(t *testing.T) {
	spec := DefaultLayerSpecs()[5]
	a := NewLayerAnimator(spec, NewRand(3))
	tr := a.Rest()
	for i := 0; i < 120; i++ {
		a.Update(&tr, Frame{DT: 1.0 / 60}, explodedState())
	}
	st := DefaultSceneState()
	for i := 0; i < 600; i++ {
		a.Update(&tr, Frame{DT: 1.0 / 60}, &st)
	}
	assertNearTol(t, "y", tr.Position.Y, spec.Position.Y, 1e-3)
	assertNearTol(t, "scale", tr.Scale.X, spec.Scale, 1e-3)
	assertNearTol(t, "rot.x", tr.Rotation.X, 0, 1e-3)
	assertNearTol(t, "rot.y", tr.Rotation.Y, spec.Rotation.Y, 1e-3)
}

func TestAnimatorsIgnoreNilTransform(t *testing.T) {
	st := explodedState()
	f := Frame{DT: 0.016, Elapsed: 1}
	animators := []Animator{
		NewLayerAnimator(DefaultLayerSpecs()[0], NewRand(1)),
		NewBaubleAnimator(BaubleSpec{Position: Vec3{1, 1, 1}, Scale: 0.2}),
		NewTinselAnimator(),
		NewStarAnimator(),
	}
	for _, a := range animators {
		a.Update(nil, f, st)
	}
}

// --- bauble ---

func TestBaubleRadius(t *testing.T) {
	assertNear(t, "base", BaubleRadius(0), 2.2)
	assertNear(t, "top", BaubleRadius(7.5), 1.9*(1-7.5/8)+0.3)
	// The apex radius is 0.3; the curve only reaches it at y=8.
	assertNear(t, "apex", BaubleRadius(8), 0.3)
}

func TestSampleBaublesPlacement(t *testing.T) {
	palette := []Color{MustHex("#ff0000"), MustHex("#00ff00")}
	specs := SampleBaubles(50, palette, NewRand(7))
	if len(specs) != 50 {
		t.Fatalf("baubles = %d, want 50", len(specs))
	}
	for i, s := range specs {
		y := s.Position.Y + 0.5
		if y < 0 || y > 7.5 {
			t.Errorf("bauble %d height %v outside [0, 7.5]", i, y)
		}
		r := math.Hypot(s.Position.X, s.Position.Z)
		assertNearTol(t, "radius", r, BaubleRadius(y)*0.9, 1e-9)
		if s.Scale < 0.1 || s.Scale > 0.25 {
			t.Errorf("bauble %d scale %v outside [0.1, 0.25]", i, s.Scale)
		}
		if s.Color != palette[i%2] {
			t.Errorf("bauble %d color %+v, want palette[%d]", i, s.Color, i%2)
		}
		assertNearTol(t, "outward len", s.Outward.Len(), 1, 1e-9)
	}
}

func TestBaubleExplodedTarget(t *testing.T) {
	spec := BaubleSpec{Position: Vec3{1, 2, 0}, Scale: 0.2, Outward: Vec3{1, 0, 0}}
	a := NewBaubleAnimator(spec)
	got := a.Target(explodedState())
	assertVec(t, "target", got, Vec3{1 + 3.5, 2 + 2*0.8 + 1, 0})

	tr := a.Rest()
	a.Update(&tr, Frame{DT: 1}, explodedState())
	assertVec(t, "landed", tr.Position, got)
}

// --- tinsel ---

func TestSpiralCurve(t *testing.T) {
	pts := SpiralCurve()
	if len(pts) != 151 {
		t.Fatalf("points = %d, want 151", len(pts))
	}
	assertVec(t, "first", pts[0], Vec3{2.1, -0.5, 0})
	assertVec(t, "last", pts[150], Vec3{0.1, 7.5, 0})
}

func TestCatmullRomEndpoints(t *testing.T) {
	pts := SpiralCurve()
	c := NewCatmullRom(pts)
	assertVec(t, "start", c.Point(0), pts[0])
	assertVec(t, "end", c.Point(1), pts[len(pts)-1])
	assertNearTol(t, "tangent len", c.Tangent(0.5).Len(), 1, 1e-9)
}

func TestTinselFadesWhenExploded(t *testing.T) {
	a := NewTinselAnimator()
	tr := a.Rest()
	a.Update(&tr, Frame{DT: 0.25}, explodedState())
	// Fade rate 4 lands in one quarter second; scale rate 2 gets halfway.
	assertNear(t, "opacity", tr.Opacity, 0)
	assertNear(t, "scale", tr.Scale.X, 2)
	assertNear(t, "scale iso", tr.Scale.Y, tr.Scale.Z)
}

// --- star ---

func TestStarTilt(t *testing.T) {
	assertNear(t, "tilt", StarTilt(math.Pi/2), 0.15)
	assertNear(t, "zero", StarTilt(0), 0)
}

func TestStarSpinsAndRises(t *testing.T) {
	a := NewStarAnimator()
	tr := a.Rest()
	st := explodedState()
	a.Update(&tr, Frame{DT: 0.5, Elapsed: math.Pi / 2}, st)
	assertNear(t, "spin", tr.Rotation.Y, 0.4)
	assertNear(t, "tilt", tr.Rotation.Z, 0.15)
	// 0.5*2.5 clamps to 1.
	assertNear(t, "y", tr.Position.Y, 14)
	assertNear(t, "scale", tr.Scale.X, 1.8)
}

func TestStarTiltIgnoresHistory(t *testing.T) {
	a := NewStarAnimator()
	tr := a.Rest()
	st := DefaultSceneState()
	for _, elapsed := range []float64{0.3, 1.0, 2.0, 4.0, 5.5} {
		a.Update(&tr, Frame{DT: 0.1, Elapsed: elapsed}, &st)
	}
	a.Update(&tr, Frame{DT: 0.1, Elapsed: math.Pi / 2}, &st)
	assertNear(t, "tilt", tr.Rotation.Z, 0.15)

	// Same clock, same tilt, whatever Z held before.
	tr.Rotation.Z = 3
	a.Update(&tr, Frame{DT: 0.1, Elapsed: math.Pi / 2}, explodedState())
	assertNear(t, "tilt after", tr.Rotation.Z, 0.15)
}

func TestStarSpinsWhileAssembled(t *testing.T) {
	a := NewStarAnimator()
	tr := a.Rest()
	st := DefaultSceneState()
	a.Update(&tr, Frame{DT: 0.1}, &st)
	a.Update(&tr, Frame{DT: 0.1}, &st)
	assertNear(t, "spin", tr.Rotation.Y, 0.16)
	assertNear(t, "y", tr.Position.Y, 7.8)
}
