package arix

import (
	"log/slog"
	"reflect"
)

// Rotation speed presets offered by the controls.
const (
	SpeedSlow = 0.5
	SpeedFast = 2.0
)

// SceneState is the shared, UI-mutated state every animator reads each frame.
// It is written only through a Controller.
type SceneState struct {
	Exploded      bool
	RotationSpeed float64
	MusicPlaying  bool
}

// DefaultSceneState returns the state a fresh scene starts in: assembled,
// slow rotation, music off.
func DefaultSceneState() SceneState {
	return SceneState{RotationSpeed: SpeedSlow}
}

// ControlType identifies which control changed.
type ControlType uint8

const (
	ControlExplode ControlType = iota // exploded flag flipped
	ControlSpeed                      // rotation speed preset changed
	ControlMusic                      // music flag flipped
)

// String returns the control name used in logs and scripts.
func (c ControlType) String() string {
	switch c {
	case ControlExplode:
		return "explode"
	case ControlSpeed:
		return "speed"
	case ControlMusic:
		return "music"
	default:
		return "unknown"
	}
}

// ControlEvent is emitted after every applied control command and carries
// the state as it is after the change.
type ControlEvent struct {
	Type  ControlType
	State SceneState
}

// EventSink receives control events. Audio playback and the ECS bridge are
// sinks.
type EventSink interface {
	EmitEvent(event ControlEvent)
}

// Controller is the only writer of a SceneState. Commands apply immediately;
// animators observe them on their next Update.
type Controller struct {
	state  *SceneState
	sinks  []EventSink
	logger *slog.Logger
}

// NewController returns a controller mutating state.
func NewController(state *SceneState) *Controller {
	return &Controller{state: state, logger: slog.Default()}
}

// SetLogger replaces the controller's logger. A nil logger restores slog.Default.
func (c *Controller) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	c.logger = l
}

// AddSink registers a sink for control events.
func (c *Controller) AddSink(s EventSink) {
	c.sinks = append(c.sinks, s)
}

// RemoveSink unregisters a sink. Sinks are matched by identity, so register
// pointers; a sink whose dynamic type is not comparable is never matched.
func (c *Controller) RemoveSink(s EventSink) {
	if s == nil || !reflect.TypeOf(s).Comparable() {
		return
	}
	for i, existing := range c.sinks {
		if existing == s {
			c.sinks = append(c.sinks[:i], c.sinks[i+1:]...)
			return
		}
	}
}

// State returns a copy of the current state.
func (c *Controller) State() SceneState {
	return *c.state
}

// ToggleExploded flips between the assembled and exploded layouts.
func (c *Controller) ToggleExploded() {
	c.state.Exploded = !c.state.Exploded
	c.emit(ControlExplode)
}

// SetExploded sets the exploded flag, emitting only when it changes.
func (c *Controller) SetExploded(exploded bool) {
	if c.state.Exploded == exploded {
		return
	}
	c.ToggleExploded()
}

// SetRotationSpeed selects a rotation speed preset. Values other than
// SpeedSlow and SpeedFast are ignored.
func (c *Controller) SetRotationSpeed(v float64) {
	if v != SpeedSlow && v != SpeedFast {
		c.logger.Debug("ignoring rotation speed outside presets", "value", v)
		return
	}
	c.state.RotationSpeed = v
	c.emit(ControlSpeed)
}

// ToggleSpeed cycles between the two speed presets.
func (c *Controller) ToggleSpeed() {
	if c.state.RotationSpeed == SpeedSlow {
		c.SetRotationSpeed(SpeedFast)
		return
	}
	c.SetRotationSpeed(SpeedSlow)
}

// ToggleMusic flips the ambience flag.
func (c *Controller) ToggleMusic() {
	c.state.MusicPlaying = !c.state.MusicPlaying
	c.emit(ControlMusic)
}

func (c *Controller) emit(t ControlType) {
	ev := ControlEvent{Type: t, State: *c.state}
	c.logger.Debug("control", "type", t.String(),
		"exploded", ev.State.Exploded, "speed", ev.State.RotationSpeed, "music", ev.State.MusicPlaying)
	for _, s := range c.sinks {
		s.EmitEvent(ev)
	}
}
