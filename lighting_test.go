package arix

import "testing"

func defaultRig() *LightRig {
	return NewLightRig(DefaultConfig().Lighting)
}

func TestShadeFacingLightIsBrighter(t *testing.T) {
	r := defaultRig()
	eye := Vec3{0, 2, 10}
	p := Vec3{0, 2, 0}
	toward := r.Shade(p, Vec3{0, 0, 1}, eye, LeafMaterial)
	away := r.Shade(p, Vec3{0, 0, -1}, eye, LeafMaterial)
	if toward.Luminance() <= away.Luminance() {
		t.Errorf("front luminance %v <= back %v", toward.Luminance(), away.Luminance())
	}
}

func TestShadeEmissiveAddsLight(t *testing.T) {
	cfg := LightingConfig{AmbientColor: "#000000"}
	r := NewLightRig(cfg)
	m := Material{Color: MustHex("#000000"), Emissive: MustHex("#ff0000"), EmissiveIntensity: 0.5}
	got := r.Shade(Vec3{}, Vec3{0, 1, 0}, Vec3{0, 0, 5}, m)
	assertNear(t, "r", got.R, 0.5)
	assertNear(t, "g", got.G, 0)
}

func TestShadeAmbientOnly(t *testing.T) {
	r := NewLightRig(LightingConfig{AmbientColor: "#ffffff", AmbientIntensity: 0.5})
	got := r.Shade(Vec3{}, Vec3{0, 1, 0}, Vec3{0, 0, 5}, Material{Color: ColorWhite})
	assertNear(t, "ambient", got.G, 0.5)
	assertNear(t, "alpha", got.A, 1)
}

func TestPointIntensityWindow(t *testing.T) {
	pl := &PointLight{Position: Vec3{}, Intensity: 100, Distance: 10}
	if got := pointIntensity(pl, Vec3{10, 0, 0}); got != 0 {
		t.Errorf("at range = %v, want 0", got)
	}
	if got := pointIntensity(pl, Vec3{20, 0, 0}); got != 0 {
		t.Errorf("beyond range = %v, want 0", got)
	}
	near := pointIntensity(pl, Vec3{1, 0, 0})
	far := pointIntensity(pl, Vec3{5, 0, 0})
	if near <= far {
		t.Errorf("near %v <= far %v", near, far)
	}
}

func TestSpotConeCutoff(t *testing.T) {
	r := defaultRig()
	inside := r.spotIntensity(Vec3{})
	outside := r.spotIntensity(Vec3{-20, 0, 0})
	if inside <= 0 {
		t.Errorf("on-axis intensity = %v, want > 0", inside)
	}
	if outside != 0 {
		t.Errorf("off-cone intensity = %v, want 0", outside)
	}
}

func TestStarLightFollows(t *testing.T) {
	r := NewLightRig(LightingConfig{
		AmbientColor: "#000000",
		StarLight:    PointLight{Color: "#ffffff", Intensity: 20, Distance: 8},
	})
	p, n, eye := Vec3{0, 0, 0}, Vec3{0, 1, 0}, Vec3{0, 5, 5}
	m := Material{Color: ColorWhite, Roughness: 1}
	r.SetStarPosition(Vec3{0, 100, 0})
	dark := r.Shade(p, n, eye, m)
	r.SetStarPosition(Vec3{0, 2, 0})
	lit := r.Shade(p, n, eye, m)
	if lit.Luminance() <= dark.Luminance() {
		t.Errorf("lit %v <= dark %v", lit.Luminance(), dark.Luminance())
	}
}

func TestSmoothstep(t *testing.T) {
	assertNear(t, "below", smoothstep(0, 1, -1), 0)
	assertNear(t, "mid", smoothstep(0, 1, 0.5), 0.5)
	assertNear(t, "above", smoothstep(0, 1, 2), 1)
	assertNear(t, "degenerate", smoothstep(1, 1, 2), 1)
}
