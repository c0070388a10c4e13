package arix

import "math"

// BloomConfig controls the glow pass.
type BloomConfig struct {
	Threshold float64 `yaml:"threshold"`
	Intensity float64 `yaml:"intensity"`
	Radius    float64 `yaml:"radius"`
}

// NoiseConfig controls film grain.
type NoiseConfig struct {
	Opacity float64 `yaml:"opacity"`
}

// VignetteConfig controls edge darkening.
type VignetteConfig struct {
	Offset   float64 `yaml:"offset"`
	Darkness float64 `yaml:"darkness"`
}

// ToneMapping compresses linear lit colors into displayable range, adapting
// to the scene's average luminance over time.
type ToneMapping struct {
	Adaptive         bool    `yaml:"adaptive"`
	MiddleGrey       float64 `yaml:"middleGrey"`
	MaxLuminance     float64 `yaml:"maxLuminance"`
	AverageLuminance float64 `yaml:"averageLuminance"`
	AdaptationRate   float64 `yaml:"adaptationRate"`
}

// PostConfig is the fixed post-processing stack.
type PostConfig struct {
	Enabled     bool           `yaml:"enabled"`
	Bloom       BloomConfig    `yaml:"bloom"`
	Noise       NoiseConfig    `yaml:"noise"`
	Vignette    VignetteConfig `yaml:"vignette"`
	ToneMapping ToneMapping    `yaml:"toneMapping"`
}

// Adapt moves the adapted luminance toward measured. The step is
// exponential in dt so it is frame-rate independent. Non-adaptive tone
// mapping always returns the configured average.
func (tm ToneMapping) Adapt(adapted, measured, dt float64) float64 {
	if !tm.Adaptive {
		return tm.AverageLuminance
	}
	if adapted <= 0 {
		return math.Max(measured, 1e-4)
	}
	f := 1 - math.Exp(-dt*tm.AdaptationRate)
	return math.Max(adapted+(measured-adapted)*f, 1e-4)
}

// Reinhard maps luminance l under adapted average avg with the extended
// Reinhard operator: values at MaxLuminance map to 1.
func (tm ToneMapping) Reinhard(l, avg float64) float64 {
	if avg <= 0 {
		avg = 1
	}
	scaled := tm.MiddleGrey / avg * l
	white := tm.MaxLuminance
	if white <= 0 {
		return scaled / (1 + scaled)
	}
	return scaled * (1 + scaled/(white*white)) / (1 + scaled)
}

// Apply tone maps c by scaling its RGB so the luminance follows Reinhard.
func (tm ToneMapping) Apply(c Color, avg float64) Color {
	l := c.Luminance()
	if l <= 0 {
		return Color{0, 0, 0, c.A}
	}
	return c.Scale(tm.Reinhard(l, avg) / l).Clamped()
}

// bloomSmoothing is the width of the soft knee above the bloom threshold.
const bloomSmoothing = 0.025

// BrightPass returns the part of c bright enough to glow.
func (b BloomConfig) BrightPass(c Color) Color {
	mask := smoothstep(b.Threshold, b.Threshold+bloomSmoothing, c.Luminance())
	out := c.Scale(mask)
	out.A = 1
	return out
}

// Factor returns the brightness multiplier at normalized screen coordinates
// (u, v), both in [0, 1].
func (v VignetteConfig) Factor(u, w float64) float64 {
	du, dw := u-0.5, w-0.5
	d := math.Sqrt(du*du + dw*dw)
	return smoothstep(0.8, v.Offset*0.799, d*(v.Darkness+v.Offset))
}

// Grain offsets c by n scaled to the configured opacity. n is uniform noise
// in [0, 1).
func (g NoiseConfig) Grain(c Color, n float64) Color {
	d := (n - 0.5) * 2 * g.Opacity
	return Color{c.R + d, c.G + d, c.B + d, c.A}.Clamped()
}
