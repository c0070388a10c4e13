// Package audio plays the scene's ambience: a slow bell melody over a pad,
// synthesized with beep and started or stopped by the music control.
package audio

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/phanxgames/arix"
)

// Note frequencies used by the melody.
const (
	noteC4 = 261.63
	noteD4 = 293.66
	noteE4 = 329.63
	noteG4 = 392.00
	noteA4 = 440.00
	noteC5 = 523.25
	noteE5 = 659.25
	noteG5 = 783.99
)

// melody is a pentatonic bell line; zeros are rests.
var melody = []float64{
	noteE4, noteG4, noteA4, 0, noteG4, noteE4, noteD4, 0,
	noteC4, noteD4, noteE4, noteG4, noteE4, 0, noteD4, 0,
	noteE4, noteG4, noteC5, 0, noteA4, noteG4, noteE4, 0,
	noteD4, noteE4, noteD4, noteC4, 0, 0, 0, 0,
}

// padChord is a low C major chord.
var padChord = []float64{130.81, 196.00, 329.63}

// chimeNotes ring when the tree bursts apart.
var chimeNotes = []float64{noteC5, noteE5, noteG5}

// Ambience owns the mixer that the speaker plays. It implements
// arix.EventSink: the music control pauses and resumes the loop, and an
// explosion rings a chime while music is on.
type Ambience struct {
	mu      sync.Mutex
	cfg     arix.AudioConfig
	sr      beep.SampleRate
	mixer   *beep.Mixer
	music   *beep.Ctrl
	volume  *effects.Volume
	started bool
	logger  *slog.Logger
}

// New builds the ambience graph paused. Nothing is heard until Start.
func New(cfg arix.AudioConfig, logger *slog.Logger) *Ambience {
	if logger == nil {
		logger = slog.Default()
	}
	sr := beep.SampleRate(cfg.SampleRate)
	if sr <= 0 {
		sr = 44100
	}
	loop := beep.Mix(NewPad(padChord, sr), NewBellLoop(melody, cfg.Tempo, sr))
	a := &Ambience{
		cfg:    cfg,
		sr:     sr,
		mixer:  &beep.Mixer{},
		music:  &beep.Ctrl{Streamer: loop, Paused: true},
		logger: logger,
	}
	a.volume = newVolume(a.music, cfg.Volume)
	a.mixer.Add(a.volume)
	return a
}

// newVolume wraps s at a base-2 exponent. -Inf or NaN silences it.
func newVolume(s beep.Streamer, exp float64) *effects.Volume {
	if math.IsInf(exp, -1) || math.IsNaN(exp) {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: exp}
}

// Start opens the audio device and begins streaming the mixer.
func (a *Ambience) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return nil
	}
	if err := speaker.Init(a.sr, a.sr.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(a.mixer)
	a.started = true
	a.logger.Debug("audio started", "rate", int(a.sr))
	return nil
}

// Close stops playback and releases the device.
func (a *Ambience) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return
	}
	speaker.Clear()
	speaker.Close()
	a.started = false
}

// Streamer returns the root of the audio graph.
func (a *Ambience) Streamer() beep.Streamer { return a.mixer }

// SampleRate returns the graph's sample rate.
func (a *Ambience) SampleRate() beep.SampleRate { return a.sr }

// Playing reports whether the music loop is audible.
func (a *Ambience) Playing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	var paused bool
	a.locked(func() { paused = a.music.Paused })
	return !paused
}

// SetPlaying pauses or resumes the music loop.
func (a *Ambience) SetPlaying(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.locked(func() { a.music.Paused = !on })
	a.logger.Debug("ambience", "playing", on)
}

// SetVolume sets the loop gain as a base-2 exponent.
func (a *Ambience) SetVolume(exp float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.locked(func() {
		a.volume.Volume = exp
		a.volume.Silent = math.IsInf(exp, -1)
	})
}

// EmitEvent implements arix.EventSink.
func (a *Ambience) EmitEvent(ev arix.ControlEvent) {
	switch ev.Type {
	case arix.ControlMusic:
		a.SetPlaying(ev.State.MusicPlaying)
	case arix.ControlExplode:
		if ev.State.Exploded && ev.State.MusicPlaying {
			a.chime()
		}
	}
}

func (a *Ambience) chime() {
	a.mu.Lock()
	defer a.mu.Unlock()
	c := newVolume(Chime(chimeNotes, 90*time.Millisecond, a.sr), a.cfg.Volume)
	a.locked(func() { a.mixer.Add(c) })
}

// locked runs fn holding the speaker lock once playback has started. The
// speaker callback reads the graph on its own goroutine.
func (a *Ambience) locked(fn func()) {
	if a.started {
		speaker.Lock()
		defer speaker.Unlock()
	}
	fn()
}
