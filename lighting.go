package arix

import "math"

// Material describes how a surface responds to the light rig.
type Material struct {
	Color     Color
	Roughness float64
	Metalness float64
	Emissive  Color
	// EmissiveIntensity scales Emissive.
	EmissiveIntensity float64
	// EnvIntensity scales the environment term for this material.
	EnvIntensity float64
}

// Materials used by the tree.
var (
	LeafMaterial = Material{Color: MustHex("#004225"), Roughness: 0.35, Metalness: 0.2, EnvIntensity: 1}
	GoldMaterial = Material{
		Color: MustHex("#ffd700"), Roughness: 0.1, Metalness: 1,
		Emissive: MustHex("#aa8800"), EmissiveIntensity: 0.3, EnvIntensity: 1,
	}
	TinselMaterial = Material{
		Color: MustHex("#e5e4e2"), Roughness: 0.1, Metalness: 1,
		Emissive: ColorWhite, EmissiveIntensity: 0.6, EnvIntensity: 1,
	}
	TrunkMaterial = Material{Color: MustHex("#2d1c10"), Roughness: 0.9, EnvIntensity: 1}
	FloorMaterial = Material{Color: MustHex("#010805"), Roughness: 0.15, Metalness: 0.85, EnvIntensity: 1}
)

// OrnamentMaterial returns the polished metal material for an ornament of
// color c.
func OrnamentMaterial(c Color) Material {
	return Material{Color: c, Roughness: 0.1, Metalness: 0.95, EnvIntensity: 2}
}

// PointLight is an omni light with a finite range. A zero Distance means
// infinite range.
type PointLight struct {
	Position  Vec3    `yaml:"position"`
	Color     string  `yaml:"color"`
	Intensity float64 `yaml:"intensity"`
	Distance  float64 `yaml:"distance"`

	color Color
}

// SpotLight is a cone light aimed at Target.
type SpotLight struct {
	Position  Vec3    `yaml:"position"`
	Target    Vec3    `yaml:"target"`
	Color     string  `yaml:"color"`
	Intensity float64 `yaml:"intensity"`
	// Angle is the cone half-angle in radians.
	Angle float64 `yaml:"angle"`
	// Penumbra is the fraction of the cone that fades out, in [0, 1].
	Penumbra float64 `yaml:"penumbra"`

	color Color
}

// LightingConfig is the static light rig.
type LightingConfig struct {
	AmbientColor     string       `yaml:"ambientColor"`
	AmbientIntensity float64      `yaml:"ambientIntensity"`
	Sun              SpotLight    `yaml:"sun"`
	Fill             []PointLight `yaml:"fill"`
	// StarLight follows the topper.
	StarLight            PointLight `yaml:"starLight"`
	EnvironmentIntensity float64    `yaml:"environmentIntensity"`
}

// LightRig evaluates the static lighting for a surface point. It is a small
// forward shading model: Lambert diffuse, Blinn-Phong specular, inverse-square
// falloff, and a two-tone sky/ground environment term.
type LightRig struct {
	ambient Color
	sun     SpotLight
	points  []PointLight
	star    PointLight
	env     float64

	sky, ground Color
}

// NewLightRig resolves cfg's colors. Unparseable colors fall back to white.
func NewLightRig(cfg LightingConfig) *LightRig {
	r := &LightRig{
		ambient: hexOrWhite(cfg.AmbientColor).Scale(cfg.AmbientIntensity),
		sun:     cfg.Sun,
		star:    cfg.StarLight,
		env:     cfg.EnvironmentIntensity,
		sky:     Color{0.55, 0.56, 0.62, 1},
		ground:  Color{0.16, 0.14, 0.12, 1},
	}
	r.sun.color = hexOrWhite(cfg.Sun.Color)
	r.star.color = hexOrWhite(cfg.StarLight.Color)
	r.points = make([]PointLight, len(cfg.Fill))
	for i, p := range cfg.Fill {
		p.color = hexOrWhite(p.Color)
		r.points[i] = p
	}
	return r
}

// SetStarPosition moves the light that follows the topper.
func (r *LightRig) SetStarPosition(p Vec3) {
	r.star.Position = p
}

// Shade returns the lit color of a surface point p with unit normal n seen
// from eye. The result is linear and may exceed 1; tone mapping compresses it.
func (r *LightRig) Shade(p, n, eye Vec3, m Material) Color {
	base := m.Color
	view := eye.Sub(p).Normalize()
	diffuse := base.Scale(1 - m.Metalness)
	specColor := Color{0.04, 0.04, 0.04, 1}.Blend(base, m.Metalness)
	shininess := 2/math.Max(m.Roughness*m.Roughness*m.Roughness*m.Roughness, 1e-4) - 2
	shininess = math.Min(shininess, 2048)

	out := base.Mul(r.ambient)
	out.A = base.A

	contribute := func(lightPos Vec3, lc Color, intensity float64) {
		l := lightPos.Sub(p)
		d := l.Len()
		if d == 0 || intensity <= 0 {
			return
		}
		l = l.Scale(1 / d)
		ndl := n.Dot(l)
		if ndl <= 0 {
			return
		}
		radiance := lc.Scale(intensity)
		out = out.Add(diffuse.Mul(radiance).Scale(ndl / math.Pi))

		h := l.Add(view).Normalize()
		ndh := math.Max(n.Dot(h), 0)
		norm := (shininess + 8) / (8 * math.Pi)
		spec := norm * math.Pow(ndh, shininess) * ndl
		out = out.Add(specColor.Mul(radiance).Scale(spec))
	}

	if sunI := r.spotIntensity(p); sunI > 0 {
		contribute(r.sun.Position, r.sun.color, sunI)
	}
	for i := range r.points {
		pl := &r.points[i]
		contribute(pl.Position, pl.color, pointIntensity(pl, p))
	}
	contribute(r.star.Position, r.star.color, pointIntensity(&r.star, p))

	if r.env > 0 {
		env := r.ground.Blend(r.sky, n.Y*0.5+0.5).Scale(r.env * m.EnvIntensity)
		gloss := 1 - m.Roughness*0.5
		out = out.Add(env.Mul(diffuse).Scale(0.3))
		out = out.Add(env.Mul(specColor).Scale(0.5 * gloss))
	}

	if m.EmissiveIntensity > 0 {
		out = out.Add(m.Emissive.Scale(m.EmissiveIntensity))
	}
	return out
}

// spotIntensity returns the sun's inverse-square intensity at p, attenuated
// by the cone and its penumbra.
func (r *LightRig) spotIntensity(p Vec3) float64 {
	s := &r.sun
	axis := s.Target.Sub(s.Position).Normalize()
	toP := p.Sub(s.Position)
	d := toP.Len()
	if d == 0 {
		return 0
	}
	cosAngle := toP.Scale(1 / d).Dot(axis)
	outer := math.Cos(s.Angle)
	inner := math.Cos(s.Angle * (1 - s.Penumbra))
	cone := smoothstep(outer, inner, cosAngle)
	return s.Intensity * cone / (d * d)
}

// pointIntensity applies inverse-square falloff windowed to zero at the
// light's Distance.
func pointIntensity(pl *PointLight, p Vec3) float64 {
	d := pl.Position.Sub(p).Len()
	if d == 0 {
		return 0
	}
	i := pl.Intensity / (d * d)
	if pl.Distance > 0 {
		w := clamp01(1 - math.Pow(d/pl.Distance, 4))
		i *= w * w
	}
	return i
}

func smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

func hexOrWhite(s string) Color {
	c, err := ParseHexColor(s)
	if err != nil {
		return ColorWhite
	}
	return c
}
