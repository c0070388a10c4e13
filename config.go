package arix

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ARIX_"

// WindowConfig sizes the desktop or browser viewport.
type WindowConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	Fullscreen bool   `yaml:"fullscreen"`
	// TPS is the fixed update rate of the window driver.
	TPS int `yaml:"tps"`
}

// TermConfig controls the terminal driver.
type TermConfig struct {
	FPS int `yaml:"fps"`
	// Detail scales mesh tessellation for the terminal rasterizer.
	Detail float64 `yaml:"detail"`
}

// AudioConfig controls the ambience synthesizer.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sampleRate"`
	// Volume is a base-2 exponent; 0 is unity gain, -1 is half.
	Volume float64 `yaml:"volume"`
	// Tempo is the bell pattern tempo in beats per minute.
	Tempo float64 `yaml:"tempo"`
}

// Config is the complete runtime configuration.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Term     TermConfig     `yaml:"term"`
	Tree     TreeConfig     `yaml:"tree"`
	Camera   CameraConfig   `yaml:"camera"`
	Lighting LightingConfig `yaml:"lighting"`
	Post     PostConfig     `yaml:"post"`
	Audio    AudioConfig    `yaml:"audio"`
	Seed     uint64         `yaml:"seed"`
	Debug    bool           `yaml:"debug"`
}

// DefaultConfig returns the stock scene.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{Width: 1280, Height: 720, Title: "The Arix Collection", TPS: 60},
		Term:   TermConfig{FPS: 30, Detail: 0.5},
		Tree:   DefaultTreeConfig(),
		Camera: CameraConfig{Position: Vec3{0, 2, 10}, FOV: 50, Near: 0.1},
		Lighting: LightingConfig{
			AmbientColor:     "#002a20",
			AmbientIntensity: 0.8,
			Sun: SpotLight{
				Position: Vec3{5, 12, 8}, Color: "#fff5db", Intensity: 600,
				Angle: 0.3, Penumbra: 0.5,
			},
			Fill: []PointLight{
				{Position: Vec3{-6, 6, -6}, Color: "#00ff99", Intensity: 150, Distance: 25},
				{Position: Vec3{6, 4, 6}, Color: "#ffcc00", Intensity: 100, Distance: 20},
				{Position: Vec3{0, 2, 5}, Color: "#ffffff", Intensity: 50, Distance: 10},
			},
			StarLight:            PointLight{Color: "#ffd700", Intensity: 20, Distance: 8},
			EnvironmentIntensity: 1.5,
		},
		Post: PostConfig{
			Enabled:  true,
			Bloom:    BloomConfig{Threshold: 0.75, Intensity: 1.8, Radius: 0.5},
			Noise:    NoiseConfig{Opacity: 0.02},
			Vignette: VignetteConfig{Offset: 0.05, Darkness: 0.8},
			ToneMapping: ToneMapping{
				Adaptive: true, MiddleGrey: 0.7, MaxLuminance: 16,
				AverageLuminance: 1, AdaptationRate: 1,
			},
		},
		Audio: AudioConfig{Enabled: true, SampleRate: 44100, Volume: -1, Tempo: 72},
	}
}

// envOverrides lists the settings that can be changed from the
// environment. Unset variables leave the pointer nil.
type envOverrides struct {
	Width        *int     `env:"WIDTH"`
	Height       *int     `env:"HEIGHT"`
	Fullscreen   *bool    `env:"FULLSCREEN"`
	Baubles      *int     `env:"BAUBLES"`
	Palette      []string `env:"PALETTE" envSeparator:","`
	Seed         *uint64  `env:"SEED"`
	Debug        *bool    `env:"DEBUG"`
	Post         *bool    `env:"POST"`
	Audio        *bool    `env:"AUDIO"`
	Volume       *float64 `env:"VOLUME"`
	TermFPS      *int     `env:"TERM_FPS"`
	StarCount    *int     `env:"STARS"`
	SparkleCount *int     `env:"SPARKLES"`
}

// LoadConfig reads the YAML file at path over the defaults, then applies
// ARIX_* environment overrides. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv applies ARIX_* overrides from environ, or from the process
// environment when environ is nil.
func (c *Config) ApplyEnv(environ map[string]string) error {
	var o envOverrides
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	setIf(&c.Window.Width, o.Width)
	setIf(&c.Window.Height, o.Height)
	setIf(&c.Window.Fullscreen, o.Fullscreen)
	setIf(&c.Tree.Baubles, o.Baubles)
	setIf(&c.Seed, o.Seed)
	setIf(&c.Debug, o.Debug)
	setIf(&c.Post.Enabled, o.Post)
	setIf(&c.Audio.Enabled, o.Audio)
	setIf(&c.Audio.Volume, o.Volume)
	setIf(&c.Term.FPS, o.TermFPS)
	setIf(&c.Tree.Stars.Count, o.StarCount)
	setIf(&c.Tree.Sparkles.Count, o.SparkleCount)
	if len(o.Palette) > 0 {
		c.Tree.Palette = o.Palette
	}
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	checkColor := func(field, hex string) {
		if _, err := ParseHexColor(hex); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0,
		"window: size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	check(c.Window.TPS > 0, "window.tps: must be positive, got %d", c.Window.TPS)
	check(c.Term.FPS > 0, "term.fps: must be positive, got %d", c.Term.FPS)

	check(c.Tree.Baubles >= 0, "tree.baubles: must not be negative, got %d", c.Tree.Baubles)
	check(len(c.Tree.Palette) > 0, "tree.palette: must not be empty")
	for i, h := range c.Tree.Palette {
		checkColor(fmt.Sprintf("tree.palette[%d]", i), h)
	}
	check(c.Tree.Sparkles.Count >= 0, "tree.sparkles.count: must not be negative")
	check(c.Tree.StarSparkles.Count >= 0, "tree.starSparkles.count: must not be negative")
	check(c.Tree.Stars.Count >= 0, "tree.stars.count: must not be negative")
	checkColor("tree.sparkles.color", c.Tree.Sparkles.Color)
	checkColor("tree.starSparkles.color", c.Tree.StarSparkles.Color)

	check(c.Camera.FOV > 0 && c.Camera.FOV < 180, "camera.fov: must be in (0, 180), got %g", c.Camera.FOV)
	dist := c.Camera.Position.Sub(c.Camera.Target).Len()
	check(dist > 0, "camera: position must differ from target")

	checkColor("lighting.ambientColor", c.Lighting.AmbientColor)
	checkColor("lighting.sun.color", c.Lighting.Sun.Color)
	checkColor("lighting.starLight.color", c.Lighting.StarLight.Color)
	for i, p := range c.Lighting.Fill {
		checkColor(fmt.Sprintf("lighting.fill[%d].color", i), p.Color)
	}

	check(c.Post.Noise.Opacity >= 0 && c.Post.Noise.Opacity <= 1,
		"post.noise.opacity: must be in [0, 1], got %g", c.Post.Noise.Opacity)
	check(c.Post.ToneMapping.MiddleGrey > 0, "post.toneMapping.middleGrey: must be positive")

	check(c.Audio.SampleRate > 0, "audio.sampleRate: must be positive, got %d", c.Audio.SampleRate)
	check(c.Audio.Tempo > 0, "audio.tempo: must be positive, got %g", c.Audio.Tempo)

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
