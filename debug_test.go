package arix

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestDebugStats(t *testing.T) {
	tree := NewTree(smallTreeConfig(), NewRand(1))
	s := tree.DebugStats()
	if s.Entities != len(tree.Entities()) || s.Mounted != s.Entities {
		t.Errorf("stats = %+v", s)
	}
	if s.Triangles == 0 {
		t.Error("expected triangles")
	}
	tree.Unmount(tree.StarID())
	if got := tree.DebugStats().Mounted; got != s.Mounted-1 {
		t.Errorf("mounted = %d, want %d", got, s.Mounted-1)
	}
}

func TestDebugLogsEveryNFrames(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tree := NewTree(smallTreeConfig(), NewRand(1))
	tree.SetLogger(logger)
	tree.SetDebug(true, 3)

	tree.Update(Frame{DT: 0.016, Elapsed: 0.016})
	tree.Update(Frame{DT: 0.016, Elapsed: 0.032})
	if strings.Contains(buf.String(), "[arix] update") {
		t.Fatal("logged before the interval elapsed")
	}
	tree.Update(Frame{DT: 0.016, Elapsed: 0.048})
	if !strings.Contains(buf.String(), "[arix] update") {
		t.Fatalf("no update record in %q", buf.String())
	}

	tree.Controller().ToggleExploded()
	tree.Update(Frame{DT: 0.016, Elapsed: 0.064})
	if !strings.Contains(buf.String(), "[arix] state changed") {
		t.Error("state change not logged")
	}
}

func TestDebugDisabledIsSilent(t *testing.T) {
	var buf bytes.Buffer
	tree := NewTree(smallTreeConfig(), NewRand(1))
	tree.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	for i := 0; i < 200; i++ {
		tree.Update(Frame{DT: 0.016})
	}
	if strings.Contains(buf.String(), "[arix]") {
		t.Errorf("debug output with debug off: %q", buf.String())
	}
}
