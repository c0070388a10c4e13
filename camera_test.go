package arix

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func defaultCamera() *Camera {
	return NewCamera(DefaultConfig().Camera)
}

func TestCameraStartingPose(t *testing.T) {
	c := defaultCamera()
	assertVec(t, "position", c.Position(), Vec3{0, 2, 10})
	assertNearTol(t, "distance", c.Distance(), math.Sqrt(104), 1e-9)
}

func TestCameraOrbitClampsPolar(t *testing.T) {
	c := defaultCamera()
	c.Orbit(0, -10)
	assertNear(t, "min polar", c.Polar(), MinPolarAngle)
	c.Orbit(0, 10)
	assertNear(t, "max polar", c.Polar(), MaxPolarAngle)
}

func TestCameraDollyClampsDistance(t *testing.T) {
	c := defaultCamera()
	c.Dolly(0.01)
	assertNear(t, "min", c.Distance(), MinDistance)
	c.Dolly(100)
	assertNear(t, "max", c.Distance(), MaxDistance)
	c.Dolly(-1)
	assertNear(t, "ignored", c.Distance(), MaxDistance)
}

func TestCameraProjectTargetToCenter(t *testing.T) {
	c := defaultCamera()
	x, y, depth, ok := c.Project(c.Target, 800, 600)
	if !ok {
		t.Fatal("target should be in front of the camera")
	}
	assertNearTol(t, "x", x, 400, 1e-9)
	assertNearTol(t, "y", y, 300, 1e-9)
	assertNearTol(t, "depth", depth, c.Distance(), 1e-9)
}

func TestCameraProjectUpIsScreenUp(t *testing.T) {
	c := defaultCamera()
	_, y, _, _ := c.Project(Vec3{0, 1, 0}, 800, 600)
	if y >= 300 {
		t.Errorf("y = %v, want above screen center", y)
	}
	_, _, _, ok := c.Project(c.Position().Scale(2), 800, 600)
	if ok {
		t.Error("point behind the camera should not project")
	}
}

func TestCameraResetView(t *testing.T) {
	c := defaultCamera()
	c.Orbit(2, 0.2)
	c.Dolly(1.5)
	c.ResetView(1)
	if !c.Resetting() {
		t.Fatal("expected reset animation")
	}
	c.Update(0.5)
	if !c.Resetting() {
		t.Fatal("reset finished early")
	}
	c.Update(0.6)
	if c.Resetting() {
		t.Fatal("reset still running after its duration")
	}
	assertVec(t, "home", c.Position(), Vec3{0, 2, 10})
}

func TestCameraOrbitCancelsReset(t *testing.T) {
	c := defaultCamera()
	c.Orbit(1, 0)
	c.ResetView(1)
	c.Orbit(0.1, 0)
	if c.Resetting() {
		t.Error("orbit should cancel the reset")
	}
}

func TestCameraPixelScale(t *testing.T) {
	c := defaultCamera()
	if c.PixelScale(0, 600) != 0 {
		t.Error("zero depth should give zero scale")
	}
	if c.PixelScale(5, 600) <= c.PixelScale(10, 600) {
		t.Error("nearer points should be larger")
	}
}

func TestCameraResetViewRefreshesView(t *testing.T) {
	c := defaultCamera()
	c.Orbit(2*math.Pi+0.5, 0)
	c.ViewMatrix()
	if c.dirty {
		t.Fatal("view should be cached")
	}
	c.ResetView(1)
	// ResetView rewrites yaw to the short way round.
	if !c.dirty {
		t.Fatal("ResetView must invalidate the cached view")
	}
	want := Affine3(mgl64.LookAtV(c.Position().gl(), c.Target.gl(), mgl64.Vec3{0, 1, 0}))
	assertMatrix(t, "view", c.ViewMatrix(), want)
}

func TestCameraProjectMatchesPixelScale(t *testing.T) {
	c := defaultCamera()
	// A unit offset along camera-right at the target's depth spans
	// PixelScale pixels.
	right := c.Target.Sub(c.Position()).Cross(Vec3{0, 1, 0}).Normalize()
	x0, _, depth, ok := c.Project(c.Target, 800, 600)
	x1, _, _, ok2 := c.Project(c.Target.Add(right), 800, 600)
	if !ok || !ok2 {
		t.Fatal("points should project")
	}
	assertNearTol(t, "span", x1-x0, c.PixelScale(depth, 600), 1e-6)
	assertNearTol(t, "focal", c.focal(600), 300/math.Tan(c.FOV/2), 1e-9)
}
