package arix

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyScript is returned when a script has no steps.
var ErrEmptyScript = errors.New("script has no steps")

// scriptStep is a single action in a script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Value  float64 `json:"value,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptHooks connects a script to the driver running it. Nil hooks are
// skipped.
type ScriptHooks struct {
	// Screenshot captures the next rendered frame under label.
	Screenshot func(label string)
	// Orbit rotates the camera by the given angles in radians.
	Orbit func(dYaw, dPolar float64)
	// ResetView animates the camera home.
	ResetView func()
	// Click presses and releases the pointer at screen coordinates.
	Click func(x, y float64)
	// Drag moves the pressed pointer across the screen over frames ticks.
	Drag func(fromX, fromY, toX, toY float64, frames int)
}

// Script sequences control commands, camera moves, and screenshots across
// frames. It drives the headless command and automated captures.
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// CameraHooks returns hooks that drive cam and pass screenshot requests to
// shot, which may be nil.
func CameraHooks(cam *Camera, shot func(label string)) ScriptHooks {
	return ScriptHooks{
		Screenshot: shot,
		Orbit:      cam.Orbit,
		ResetView:  func() { cam.ResetView(ResetDuration) },
	}
}

// LoadScript parses a JSON script.
func LoadScript(data []byte) (*Script, error) {
	var f scriptFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse script: %w", ErrEmptyScript)
	}
	for i, st := range f.Steps {
		switch st.Action {
		case "explode", "assemble", "toggle", "music", "wait", "screenshot", "orbit", "reset", "click", "drag":
		case "speed":
			if st.Value != SpeedSlow && st.Value != SpeedFast {
				return nil, fmt.Errorf("parse script: step %d: speed %g is not a preset", i, st.Value)
			}
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Script{steps: f.Steps}, nil
}

// Len returns the number of steps.
func (s *Script) Len() int { return len(s.steps) }

// Done reports whether every step has run.
func (s *Script) Done() bool { return s.done }

// Step advances the script by one frame, applying at most one step. Call
// it once per frame before the tree updates.
func (s *Script) Step(ctl *Controller, hooks ScriptHooks) {
	if s.done {
		return
	}
	if s.waitCount > 0 {
		s.waitCount--
		return
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "explode":
		ctl.SetExploded(true)
	case "assemble":
		ctl.SetExploded(false)
	case "toggle":
		ctl.ToggleExploded()
	case "speed":
		ctl.SetRotationSpeed(st.Value)
	case "music":
		ctl.ToggleMusic()
	case "screenshot":
		if hooks.Screenshot != nil {
			hooks.Screenshot(st.Label)
		}
	case "orbit":
		if hooks.Orbit != nil {
			hooks.Orbit(st.X, st.Y)
		}
	case "reset":
		if hooks.ResetView != nil {
			hooks.ResetView()
		}
	case "click":
		if hooks.Click != nil {
			hooks.Click(st.X, st.Y)
		}
	case "drag":
		if hooks.Drag != nil {
			hooks.Drag(st.X, st.Y, st.ToX, st.ToY, st.Frames)
		}
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if s.cursor >= len(s.steps) && s.waitCount == 0 {
		s.done = true
	}
}
