package arix

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Tree.Baubles != 90 {
		t.Errorf("baubles = %d, want 90", cfg.Tree.Baubles)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arix.yaml")
	data := []byte(`
window:
  width: 640
  height: 480
tree:
  baubles: 12
  palette: ["#ff0000"]
camera:
  position: {x: 0, y: 3, z: 12}
post:
  enabled: false
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Window.Width != 640 || cfg.Window.Height != 480 {
		t.Errorf("window = %dx%d, want 640x480", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Tree.Baubles != 12 || len(cfg.Tree.Palette) != 1 {
		t.Errorf("tree = %+v", cfg.Tree)
	}
	assertVec(t, "camera", cfg.Camera.Position, Vec3{0, 3, 12})
	if cfg.Post.Enabled {
		t.Error("post should be disabled")
	}
	// Untouched sections keep their defaults.
	if cfg.Window.Title != DefaultConfig().Window.Title {
		t.Errorf("title = %q, want default", cfg.Window.Title)
	}
	assertNear(t, "fov", cfg.Camera.FOV, 50)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("window: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(map[string]string{
		"ARIX_WIDTH":   "320",
		"ARIX_BAUBLES": "5",
		"ARIX_PALETTE": "#111111,#222222",
		"ARIX_DEBUG":   "true",
		"ARIX_SEED":    "77",
	})
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Window.Width != 320 {
		t.Errorf("width = %d, want 320", cfg.Window.Width)
	}
	if cfg.Window.Height != DefaultConfig().Window.Height {
		t.Errorf("height changed to %d", cfg.Window.Height)
	}
	if cfg.Tree.Baubles != 5 || len(cfg.Tree.Palette) != 2 || !cfg.Debug || cfg.Seed != 77 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestApplyEnvBadValue(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(map[string]string{"ARIX_WIDTH": "wide"}); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window.Width = 0
	cfg.Tree.Palette = []string{"#zzzzzz"}
	cfg.Audio.SampleRate = -1
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"window", "tree.palette[0]", "audio.sampleRate"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}
