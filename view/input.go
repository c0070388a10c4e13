package view

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	defaultDragDeadZone = 4.0 // pixels

	// orbitDamping is the share of a pending orbit applied per tick.
	orbitDamping = 0.05
	// wheelDolly is the distance factor per wheel notch.
	wheelDolly = 0.95
)

// hitTarget is anything the pointer can press: the overlay's buttons.
type hitTarget interface {
	Contains(x, y float64) bool
	setHover(bool)
	setPressed(bool)
	click()
}

// pointerState tracks the mouse between ticks.
type pointerState struct {
	down     bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	hit      hitTarget
	hover    hitTarget
	dragging bool
}

// pointerEvent is one injected pointer sample in screen coordinates.
type pointerEvent struct {
	x, y    float64
	pressed bool
}

// input runs the pointer state machine: presses on targets become clicks,
// presses on empty space become orbit drags.
type input struct {
	ptr          pointerState
	dragDeadZone float64
	targets      []hitTarget
	injectQueue  []pointerEvent

	// onDrag receives pixel deltas while dragging empty space.
	onDrag func(dx, dy float64)
}

func newInput(onDrag func(dx, dy float64)) *input {
	return &input{dragDeadZone: defaultDragDeadZone, onDrag: onDrag}
}

// hitTest returns the topmost target at (x, y), or nil.
func (in *input) hitTest(x, y float64) hitTarget {
	for i := len(in.targets) - 1; i >= 0; i-- {
		if in.targets[i].Contains(x, y) {
			return in.targets[i]
		}
	}
	return nil
}

// Hovering reports whether the pointer is over a target.
func (in *input) Hovering() bool { return in.ptr.hover != nil }

// process advances the pointer state machine by one sample.
func (in *input) process(x, y float64, pressed bool) {
	ps := &in.ptr
	target := in.hitTest(x, y)

	if target != ps.hover {
		if ps.hover != nil {
			ps.hover.setHover(false)
		}
		if target != nil {
			target.setHover(true)
		}
		ps.hover = target
	}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.startX, ps.startY = x, y
		ps.lastX, ps.lastY = x, y
		ps.hit = target
		ps.dragging = false
		if target != nil {
			target.setPressed(true)
		}
	case !pressed && ps.down:
		if ps.hit != nil {
			ps.hit.setPressed(false)
			if !ps.dragging && ps.hit == target {
				target.click()
			}
		}
		ps.down = false
		ps.hit = nil
		ps.dragging = false
		ps.lastX, ps.lastY = x, y
	case pressed && ps.down:
		if x != ps.lastX || y != ps.lastY {
			// Presses that start on a button never orbit.
			if !ps.dragging && ps.hit == nil {
				dx, dy := x-ps.startX, y-ps.startY
				if math.Sqrt(dx*dx+dy*dy) > in.dragDeadZone {
					ps.dragging = true
					// Catch up on the dead zone so the drag tracks the cursor.
					ps.lastX, ps.lastY = ps.startX, ps.startY
				}
			}
			if ps.dragging && in.onDrag != nil {
				in.onDrag(x-ps.lastX, y-ps.lastY)
			}
		}
		ps.lastX, ps.lastY = x, y
	default:
		ps.lastX, ps.lastY = x, y
	}
}

// --- Injection ---

// InjectPress queues a left-button press at the given screen coordinates.
// The event is consumed on the next tick instead of real mouse input.
func (in *input) InjectPress(x, y float64) {
	in.injectQueue = append(in.injectQueue, pointerEvent{x: x, y: y, pressed: true})
}

// InjectMove queues a move with the button held down.
func (in *input) InjectMove(x, y float64) {
	in.injectQueue = append(in.injectQueue, pointerEvent{x: x, y: y, pressed: true})
}

// InjectRelease queues a release at the given screen coordinates.
func (in *input) InjectRelease(x, y float64) {
	in.injectQueue = append(in.injectQueue, pointerEvent{x: x, y: y, pressed: false})
}

// InjectClick queues a press followed by a release. Consumes two ticks.
func (in *input) InjectClick(x, y float64) {
	in.InjectPress(x, y)
	in.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 interpolated moves,
// and a release at (toX, toY). Minimum frames is 2.
func (in *input) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	frames = max(frames, 2)
	in.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		in.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	in.InjectRelease(toX, toY)
}

// processInjected pops one injected event and feeds it through the state
// machine. It reports whether an event was consumed.
func (in *input) processInjected() bool {
	if len(in.injectQueue) == 0 {
		return false
	}
	evt := in.injectQueue[0]
	copy(in.injectQueue, in.injectQueue[1:])
	in.injectQueue = in.injectQueue[:len(in.injectQueue)-1]
	in.process(evt.x, evt.y, evt.pressed)
	return true
}

// processMouse feeds the real cursor through the state machine.
func (in *input) processMouse() {
	mx, my := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) ||
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	in.process(float64(mx), float64(my), pressed)
}

// --- Orbit damping ---

// orbitDamper spreads drag input over several ticks the way damped orbit
// controls do: each tick applies a fixed share of what is pending.
type orbitDamper struct {
	yaw, polar float64
}

// add queues a drag of (dx, dy) pixels in a viewport h pixels tall. A drag
// across the full height is one full turn.
func (o *orbitDamper) add(dx, dy, h float64) {
	if h <= 0 {
		return
	}
	o.yaw -= 2 * math.Pi * dx / h
	o.polar -= 2 * math.Pi * dy / h
}

// step returns the rotation to apply this tick.
func (o *orbitDamper) step() (dYaw, dPolar float64) {
	dYaw, dPolar = o.yaw*orbitDamping, o.polar*orbitDamping
	o.yaw -= dYaw
	o.polar -= dPolar
	if math.Abs(o.yaw) < 1e-6 {
		o.yaw = 0
	}
	if math.Abs(o.polar) < 1e-6 {
		o.polar = 0
	}
	return dYaw, dPolar
}

// idle reports whether nothing is pending.
func (o *orbitDamper) idle() bool { return o.yaw == 0 && o.polar == 0 }
