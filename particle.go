package arix

import (
	"math"
	"math/rand/v2"
)

// sparkle holds per-particle state. Unexported; managed by Sparkles.
type sparkle struct {
	base  Vec3    // rest position inside the field's cube
	speed float64 // per-particle speed factor
	noise float64 // per-particle drift frequency
	phase float64 // twinkle phase offset
	size  float64

	pos   Vec3 // current position, recomputed each update
	alpha float64
}

// SparkleConfig controls a floating sparkle field.
type SparkleConfig struct {
	// Count is the number of sparkles. The pool is allocated once.
	Count int `yaml:"count"`
	// Scale is the edge length of the cube the sparkles are scattered in.
	Scale float64 `yaml:"scale"`
	// Size is the nominal point size in pixels at a distance of 10 units.
	Size float64 `yaml:"size"`
	// Speed scales the drift and twinkle frequency.
	Speed float64 `yaml:"speed"`
	// Opacity is the peak sparkle opacity.
	Opacity float64 `yaml:"opacity"`
	// Color is a hex color string.
	Color string `yaml:"color"`
	// Noise scales how strongly position varies the drift phase.
	Noise float64 `yaml:"noise"`
}

// Sparkles is a fixed pool of softly drifting, twinkling points. Positions
// are an absolute function of elapsed time, so a field can be paused or
// rewound without accumulating drift.
type Sparkles struct {
	config    SparkleConfig
	color     Color
	particles []sparkle
}

// NewSparkles scatters cfg.Count sparkles using rng.
func NewSparkles(cfg SparkleConfig, rng *rand.Rand) *Sparkles {
	count := cfg.Count
	if count < 0 {
		count = 0
	}
	if cfg.Noise == 0 {
		cfg.Noise = 1
	}
	color, err := ParseHexColor(cfg.Color)
	if err != nil {
		color = ColorWhite
	}

	half := cfg.Scale / 2
	spread := Range{-half, half}
	s := &Sparkles{
		config:    cfg,
		color:     color,
		particles: make([]sparkle, count),
	}
	for i := range s.particles {
		p := &s.particles[i]
		p.base = Vec3{spread.Random(rng), spread.Random(rng), spread.Random(rng)}
		p.speed = cfg.Speed * (0.5 + randFloat(rng))
		p.noise = cfg.Noise * (0.5 + randFloat(rng))
		p.phase = randFloat(rng) * math.Pi * 2
		p.size = cfg.Size * (0.5 + randFloat(rng)*0.5)
	}
	s.place(0)
	return s
}

// Config returns the field's configuration.
func (s *Sparkles) Config() SparkleConfig { return s.config }

// Color returns the parsed sparkle color.
func (s *Sparkles) Color() Color { return s.color }

// Len returns the number of sparkles.
func (s *Sparkles) Len() int { return len(s.particles) }

// At returns the position, opacity, and size of sparkle i.
func (s *Sparkles) At(i int) (pos Vec3, alpha, size float64) {
	p := &s.particles[i]
	return p.pos, p.alpha, p.size
}

// Update advances the field to f.Elapsed.
func (s *Sparkles) Update(f Frame) {
	s.place(f.Elapsed)
}

func (s *Sparkles) place(t float64) {
	for i := range s.particles {
		p := &s.particles[i]
		phase := t * p.speed
		b := p.base
		p.pos = Vec3{
			b.X + math.Cos(phase+b.Y*p.noise)*0.1,
			b.Y + math.Sin(phase+b.X*p.noise)*0.2,
			b.Z + math.Cos(phase+b.X*b.Y*p.noise)*0.1,
		}
		twinkle := 0.6 + 0.4*math.Sin(t*p.speed*2+p.phase)
		p.alpha = s.config.Opacity * twinkle
	}
}

// StarFieldConfig controls the distant star backdrop.
type StarFieldConfig struct {
	Count int `yaml:"count"`
	// Radius is the inner radius of the shell stars are placed in.
	Radius float64 `yaml:"radius"`
	// Depth is the thickness of the shell.
	Depth float64 `yaml:"depth"`
	// Factor scales point sizes.
	Factor float64 `yaml:"factor"`
	// Speed is the twinkle speed.
	Speed float64 `yaml:"speed"`
	// FloatSpeed and FloatRotation drive the slow sway of the whole field.
	FloatSpeed    float64 `yaml:"floatSpeed"`
	FloatRotation float64 `yaml:"floatRotation"`
	FloatHeight   float64 `yaml:"floatHeight"`
}

type star struct {
	pos   Vec3
	size  float64
	shade float64
	phase float64
}

// StarField is a shell of fixed stars that twinkle and sway together.
type StarField struct {
	config StarFieldConfig
	stars  []star
	sway   Transform
	matrix Affine3
	time   float64
}

// NewStarField scatters cfg.Count stars on the shell using rng.
func NewStarField(cfg StarFieldConfig, rng *rand.Rand) *StarField {
	count := max(cfg.Count, 0)
	sf := &StarField{
		config: cfg,
		stars:  make([]star, count),
		sway:   NewTransform(Vec3{}, Vec3{}, 1),
		matrix: Identity3(),
	}
	for i := range sf.stars {
		r := cfg.Radius + cfg.Depth*randFloat(rng)
		dir := randomUnit(rng)
		sf.stars[i] = star{
			pos:   dir.Scale(r),
			size:  (0.5 + 0.5*randFloat(rng)) * cfg.Factor,
			shade: 0.5 + 0.5*randFloat(rng),
			phase: randFloat(rng) * math.Pi * 2,
		}
	}
	return sf
}

// Len returns the number of stars.
func (sf *StarField) Len() int { return len(sf.stars) }

// At returns the world position, point size, and brightness of star i,
// including the field's current sway.
func (sf *StarField) At(i int) (pos Vec3, size, brightness float64) {
	s := &sf.stars[i]
	twinkle := 0.75 + 0.25*math.Sin(sf.time*sf.config.Speed+s.phase)
	return sf.matrix.TransformPoint(s.pos), s.size, s.shade * twinkle
}

// Sway returns the field's current floating transform.
func (sf *StarField) Sway() Transform { return sf.sway }

// Update recomputes the sway and twinkle for f.Elapsed.
func (sf *StarField) Update(f Frame) {
	sf.time = f.Elapsed
	t := f.Elapsed / 4 * sf.config.FloatSpeed
	ri := sf.config.FloatRotation
	sf.sway.Rotation = Vec3{
		X: math.Cos(t) / 8 * ri,
		Y: math.Sin(t) / 8 * ri,
		Z: math.Sin(t) / 20 * ri,
	}
	sf.sway.Position.Y = math.Sin(t) / 10 * sf.config.FloatHeight
	sf.matrix = sf.sway.Matrix()
}

// randomUnit returns a uniformly distributed unit vector.
func randomUnit(rng *rand.Rand) Vec3 {
	z := randFloat(rng)*2 - 1
	theta := randFloat(rng) * math.Pi * 2
	r := math.Sqrt(1 - z*z)
	return Vec3{r * math.Cos(theta), z, r * math.Sin(theta)}
}
