package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestHeadlessWritesFinalCapture(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "headless", "--frames", "3", "--width", "48", "--height", "24", "--seed", "7", "-o", dir)
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	assert.True(t, strings.HasSuffix(path, "_final.png"), path)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestHeadlessRunsScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "script.json")
	require.NoError(t, os.WriteFile(script, []byte(`{"steps": [
		{"action": "explode"},
		{"action": "wait", "frames": 5},
		{"action": "screenshot", "label": "burst"}
	]}`), 0o644))
	shots := filepath.Join(dir, "shots")

	_, err := execute(t, "headless", "--frames", "1", "--width", "32", "--height", "16",
		"--script", script, "-o", shots)
	require.NoError(t, err)

	entries, err := os.ReadDir(shots)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Len(t, names, 2)
	joined := strings.Join(names, " ")
	assert.Contains(t, joined, "_burst.png")
	assert.Contains(t, joined, "_final.png")
}

func TestHeadlessRejectsBadFlags(t *testing.T) {
	_, err := execute(t, "headless", "--frames", "0")
	assert.Error(t, err)

	_, err = execute(t, "headless", "--width", "0", "-o", t.TempDir())
	assert.Error(t, err)

	_, err = execute(t, "headless", "--script", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestWatchNeedsConfig(t *testing.T) {
	_, err := execute(t, "headless", "--watch", "--frames", "1", "-o", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--config")
}

func TestBadConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arix.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n  width: -1\n"), 0o644))
	_, err := execute(t, "headless", "--config", path, "--frames", "1", "-o", t.TempDir())
	assert.Error(t, err)
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arix.log")
	logger, closer, err := newLogger(path, nil, true)
	require.NoError(t, err)
	logger.Debug("[arix] hello")
	closer()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[arix] hello")
}
