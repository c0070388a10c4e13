package arix

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Orbit limits, matching the original control rig: no panning, the camera
// stays between 60° and 100° from straight up, and 5–25 units from the target.
const (
	MinPolarAngle = math.Pi / 3
	MaxPolarAngle = math.Pi / 1.8
	MinDistance   = 5.0
	MaxDistance   = 25.0

	// ResetDuration is how long ResetView takes from the frontends, in seconds.
	ResetDuration float32 = 1.2
)

// CameraConfig is the camera's starting pose.
type CameraConfig struct {
	Position Vec3    `yaml:"position"`
	Target   Vec3    `yaml:"target"`
	FOV      float64 `yaml:"fov"` // vertical field of view in degrees
	Near     float64 `yaml:"near"`
}

// resetAnim holds active reset-view tweens for the orbit parameters.
type resetAnim struct {
	yaw, polar, dist *gween.Tween
	done             [3]bool
}

// Camera is a perspective camera orbiting a fixed target. It is described by
// spherical coordinates around Target so orbit limits are simple clamps.
type Camera struct {
	Target Vec3
	// FOV is the vertical field of view in radians.
	FOV  float64
	Near float64

	yaw      float64 // azimuth around +Y, 0 looks down -Z
	polar    float64 // angle from +Y
	distance float64

	home  [3]float64
	reset *resetAnim

	view  Affine3
	dirty bool
}

// NewCamera creates a camera from cfg, clamping the pose to the orbit limits.
func NewCamera(cfg CameraConfig) *Camera {
	c := &Camera{
		Target: cfg.Target,
		FOV:    cfg.FOV * math.Pi / 180,
		Near:   cfg.Near,
		dirty:  true,
	}
	if c.FOV <= 0 {
		c.FOV = 50 * math.Pi / 180
	}
	if c.Near <= 0 {
		c.Near = 0.1
	}
	offset := cfg.Position.Sub(cfg.Target)
	c.distance = offset.Len()
	if c.distance > 0 {
		c.polar = math.Acos(clamp(offset.Y/c.distance, -1, 1))
	}
	c.yaw = math.Atan2(offset.X, offset.Z)
	c.clamp()
	c.home = [3]float64{c.yaw, c.polar, c.distance}
	return c
}

// Position returns the camera's world position.
func (c *Camera) Position() Vec3 {
	sp, cp := math.Sincos(c.polar)
	sy, cy := math.Sincos(c.yaw)
	return c.Target.Add(Vec3{
		c.distance * sp * sy,
		c.distance * cp,
		c.distance * sp * cy,
	})
}

// Distance returns the distance from the camera to its target.
func (c *Camera) Distance() float64 { return c.distance }

// Polar returns the angle between the view direction and straight up.
func (c *Camera) Polar() float64 { return c.polar }

// Yaw returns the azimuth around the target.
func (c *Camera) Yaw() float64 { return c.yaw }

// Orbit rotates the camera around its target by the given angles in
// radians. Any running reset animation is cancelled.
func (c *Camera) Orbit(dYaw, dPolar float64) {
	c.reset = nil
	c.yaw += dYaw
	c.polar += dPolar
	c.clamp()
	c.dirty = true
}

// Dolly multiplies the orbit distance by factor (<1 moves closer).
func (c *Camera) Dolly(factor float64) {
	if factor <= 0 {
		return
	}
	c.reset = nil
	c.distance *= factor
	c.clamp()
	c.dirty = true
}

// ResetView animates the camera back to its starting pose over duration
// seconds.
func (c *Camera) ResetView(duration float32) {
	// Take the short way round.
	yaw := math.Remainder(c.yaw-c.home[0], 2*math.Pi) + c.home[0]
	c.yaw = yaw
	c.dirty = true
	c.reset = &resetAnim{
		yaw:   gween.New(float32(yaw), float32(c.home[0]), duration, ease.OutCubic),
		polar: gween.New(float32(c.polar), float32(c.home[1]), duration, ease.OutCubic),
		dist:  gween.New(float32(c.distance), float32(c.home[2]), duration, ease.OutCubic),
	}
}

// Resetting reports whether a ResetView animation is running.
func (c *Camera) Resetting() bool { return c.reset != nil }

// Update advances a running reset animation.
func (c *Camera) Update(dt float64) {
	if c.reset == nil {
		return
	}
	r := c.reset
	fields := [3]*float64{&c.yaw, &c.polar, &c.distance}
	tweens := [3]*gween.Tween{r.yaw, r.polar, r.dist}
	for i, tw := range tweens {
		if r.done[i] {
			continue
		}
		val, done := tw.Update(float32(dt))
		*fields[i] = float64(val)
		if done {
			// Snap past float32 rounding.
			*fields[i] = c.home[i]
		}
		r.done[i] = done
	}
	c.dirty = true
	if r.done[0] && r.done[1] && r.done[2] {
		c.reset = nil
		c.clamp()
	}
}

// FarPlane bounds the projection depth range. Nothing in the scene comes
// close to it.
const FarPlane = 1000.0

// ViewMatrix returns the world-to-camera matrix. Camera space looks down -Z
// with +Y up.
func (c *Camera) ViewMatrix() Affine3 {
	if !c.dirty {
		return c.view
	}
	c.view = Affine3(mgl64.LookAtV(c.Position().gl(), c.Target.gl(), mgl64.Vec3{0, 1, 0}))
	c.dirty = false
	return c.view
}

// ProjectionMatrix returns the perspective projection for a viewport with
// the given width/height aspect ratio.
func (c *Camera) ProjectionMatrix(aspect float64) mgl64.Mat4 {
	return mgl64.Perspective(c.FOV, aspect, c.Near, FarPlane)
}

// Project maps a world point to screen coordinates for a w×h viewport. depth
// is the distance along the view axis; ok is false for points behind the
// near plane.
func (c *Camera) Project(p Vec3, w, h float64) (x, y, depth float64, ok bool) {
	if h <= 0 {
		return 0, 0, 0, false
	}
	view := mgl64.Mat4(c.ViewMatrix())
	clip := c.ProjectionMatrix(w / h).Mul4(view).Mul4x1(p.gl().Vec4(1))
	// Perspective puts the view-space depth in w.
	depth = clip.W()
	if depth < c.Near {
		return 0, 0, depth, false
	}
	x = w / 2 * (1 + clip.X()/depth)
	y = h / 2 * (1 - clip.Y()/depth)
	return x, y, depth, true
}

// PixelScale returns how many pixels one world unit spans at depth for a
// viewport of height h.
func (c *Camera) PixelScale(depth, h float64) float64 {
	if depth <= 0 {
		return 0
	}
	return c.focal(h) / depth
}

// focal is the projection's Y scale in pixels.
func (c *Camera) focal(h float64) float64 {
	return c.ProjectionMatrix(1).At(1, 1) * h / 2
}

func (c *Camera) clamp() {
	c.polar = clamp(c.polar, MinPolarAngle, MaxPolarAngle)
	c.distance = clamp(c.distance, MinDistance, MaxDistance)
}
