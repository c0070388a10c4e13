package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// bellPartials are the overtone ratios and amplitudes of the bell voice.
// The slightly inharmonic upper partials give it a struck-metal colour.
var bellPartials = [...]struct{ ratio, amp float64 }{
	{1, 1},
	{2, 0.5},
	{3.01, 0.25},
	{4.2, 0.12},
	{5.43, 0.06},
}

// voice is one sounding bell.
type voice struct {
	freq   float64
	amp    float64
	pos    int
	length int
	decay  float64 // per-second exponential decay rate
}

func (v *voice) sample(sr beep.SampleRate) float64 {
	t := float64(v.pos) / float64(sr)
	env := math.Exp(-t * v.decay)
	// Short attack avoids a click.
	if a := t / 0.005; a < 1 {
		env *= a
	}
	var s float64
	for _, p := range bellPartials {
		// Higher partials die faster.
		s += p.amp * math.Exp(-t*v.decay*(p.ratio-1)*0.5) * math.Sin(2*math.Pi*v.freq*p.ratio*t)
	}
	return v.amp * env * s
}

// bell is a single struck bell of fixed length.
type bell struct {
	sr beep.SampleRate
	v  voice
}

// NewBell returns a bell note at freq Hz lasting duration.
func NewBell(freq float64, duration time.Duration, sr beep.SampleRate) beep.Streamer {
	return &bell{sr: sr, v: voice{freq: freq, amp: 0.18, length: sr.N(duration), decay: 2.5}}
}

func (b *bell) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if b.v.pos >= b.v.length {
			return i, i > 0
		}
		s := b.v.sample(b.sr)
		samples[i][0] = s
		samples[i][1] = s
		b.v.pos++
	}
	return len(samples), true
}

func (b *bell) Err() error { return nil }

// BellLoop strikes one note of a pattern on every beat, forever. Zero
// entries in the pattern are rests.
type BellLoop struct {
	sr      beep.SampleRate
	pattern []float64
	beat    int
	pos     int
	step    int
	voices  []voice
}

// NewBellLoop creates a loop at tempo beats per minute.
func NewBellLoop(pattern []float64, tempo float64, sr beep.SampleRate) *BellLoop {
	if tempo <= 0 {
		tempo = 72
	}
	beat := sr.N(time.Duration(float64(time.Minute) / tempo))
	return &BellLoop{sr: sr, pattern: pattern, beat: max(beat, 1)}
}

func (l *BellLoop) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if l.pos%l.beat == 0 && len(l.pattern) > 0 {
			if f := l.pattern[l.step%len(l.pattern)]; f > 0 {
				l.voices = append(l.voices, voice{freq: f, amp: 0.12, length: l.beat * 4, decay: 1.5})
			}
			l.step++
		}
		var s float64
		live := l.voices[:0]
		for _, v := range l.voices {
			s += v.sample(l.sr)
			v.pos++
			if v.pos < v.length {
				live = append(live, v)
			}
		}
		l.voices = live
		samples[i][0] = s
		samples[i][1] = s
		l.pos++
	}
	return len(samples), true
}

func (l *BellLoop) Err() error { return nil }

// Pad is a sustained chord of detuned sine pairs whose level breathes with a
// slow LFO.
type Pad struct {
	sr    beep.SampleRate
	freqs []float64
	pos   int
	level float64
}

// NewPad creates a pad playing every frequency in freqs.
func NewPad(freqs []float64, sr beep.SampleRate) *Pad {
	return &Pad{sr: sr, freqs: freqs, level: 0.05}
}

func (p *Pad) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(p.pos) / float64(p.sr)
		lfo := 0.6 + 0.4*math.Sin(2*math.Pi*0.1*t)
		var l, r float64
		for _, f := range p.freqs {
			// Detune left and right slightly for width.
			l += math.Sin(2 * math.Pi * f * 0.998 * t)
			r += math.Sin(2 * math.Pi * f * 1.002 * t)
		}
		samples[i][0] = l * p.level * lfo
		samples[i][1] = r * p.level * lfo
		p.pos++
	}
	return len(samples), true
}

func (p *Pad) Err() error { return nil }

// chimeRing is how long each chime note sounds.
const chimeRing = 1500 * time.Millisecond

// Chime returns a quick rising arpeggio of bells over freqs, spaced by gap.
// It ends once the last note has rung out.
func Chime(freqs []float64, gap time.Duration, sr beep.SampleRate) beep.Streamer {
	notes := make([]beep.Streamer, 0, len(freqs))
	for i, f := range freqs {
		notes = append(notes, beep.Seq(
			beep.Silence(sr.N(gap*time.Duration(i))),
			NewBell(f, chimeRing, sr),
		))
	}
	total := gap*time.Duration(max(len(freqs)-1, 0)) + chimeRing
	return beep.Take(sr.N(total), beep.Mix(notes...))
}
