package arix

import (
	"log/slog"
	"time"
)

// defaultDebugEvery is how many frames are aggregated per debug record.
const defaultDebugEvery = 120

// debugState holds per-frame timing. Only populated when debug is enabled.
type debugState struct {
	enabled bool
	every   int

	frames    int
	total     time.Duration
	worst     time.Duration
	lastState SceneState
}

// SetDebug enables per-frame timing. Every `every` frames the tree logs the
// mean and worst update time at debug level; every <= 0 selects a default.
func (t *Tree) SetDebug(enabled bool, every int) {
	if every <= 0 {
		every = defaultDebugEvery
	}
	t.debug = debugState{enabled: enabled, every: every, lastState: *t.state}
}

// DebugStats is a snapshot of the tree's size.
type DebugStats struct {
	Entities  int
	Mounted   int
	Triangles int
	Sparkles  int
	Stars     int
}

// DebugStats counts entities and geometry.
func (t *Tree) DebugStats() DebugStats {
	s := DebugStats{
		Entities: len(t.entities),
		Sparkles: t.sparkles.Len() + t.starSparkles.Len(),
		Stars:    t.stars.Len(),
	}
	for i := range t.entities {
		e := &t.entities[i]
		if !e.mounted {
			continue
		}
		s.Mounted++
		if m := t.meshes.For(e.Kind); m != nil {
			s.Triangles += m.Triangles()
		}
	}
	return s
}

func (t *Tree) debugFrame(d time.Duration) {
	ds := &t.debug
	ds.frames++
	ds.total += d
	ds.worst = max(ds.worst, d)

	if *t.state != ds.lastState {
		t.logger.Debug("[arix] state changed",
			"exploded", t.state.Exploded, "speed", t.state.RotationSpeed, "music", t.state.MusicPlaying)
		ds.lastState = *t.state
	}
	if ds.frames < ds.every {
		return
	}
	stats := t.DebugStats()
	t.logger.Debug("[arix] update",
		slog.Int("frames", ds.frames),
		slog.Duration("mean", ds.total/time.Duration(ds.frames)),
		slog.Duration("worst", ds.worst),
		slog.Int("entities", stats.Entities),
		slog.Int("mounted", stats.Mounted),
		slog.Int("triangles", stats.Triangles),
		slog.Float64("groupRotation", t.groupRotation),
	)
	ds.frames = 0
	ds.total = 0
	ds.worst = 0
}
