package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConsoleLevels(t *testing.T) {
	var buf bytes.Buffer

	l, cleanup, err := New(Options{Console: &buf})
	require.NoError(t, err)
	defer cleanup()

	l.Debug("hidden")
	l.Info("shown", zap.Int("size", 3))
	l.Error("failed")
	require.NoError(t, l.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "size")
	assert.Contains(t, out, "failed")
}

func TestDebugEnablesDebugLevel(t *testing.T) {
	var buf bytes.Buffer

	l, cleanup, err := New(Options{Debug: true, Console: &buf})
	require.NoError(t, err)
	defer cleanup()

	l.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestDirSplitsErrorsFromStandard(t *testing.T) {
	dir := t.TempDir()

	l, cleanup, err := New(Options{Dir: dir, Quiet: true})
	require.NoError(t, err)

	l.Info("routine")
	l.Error("broken")
	cleanup()

	std, err := os.ReadFile(filepath.Join(dir, "standard.log"))
	require.NoError(t, err)
	errs, err := os.ReadFile(filepath.Join(dir, "errors.log"))
	require.NoError(t, err)

	assert.Contains(t, string(std), "routine")
	assert.NotContains(t, string(std), "broken")
	assert.Contains(t, string(errs), "broken")
	assert.NotContains(t, string(errs), "routine")
}

func TestQuietWithoutDirIsNop(t *testing.T) {
	l, cleanup, err := New(Options{Quiet: true})
	require.NoError(t, err)
	assert.NotNil(t, l)
	assert.NotNil(t, OrNop(nil))
	cleanup()
}

func TestCleanupClosesLogFiles(t *testing.T) {
	dir := t.TempDir()

	l, cleanup, err := New(Options{Dir: dir, Quiet: true})
	require.NoError(t, err)
	l.Info("before close")
	cleanup()

	std, err := os.ReadFile(filepath.Join(dir, "standard.log"))
	require.NoError(t, err)
	assert.Contains(t, string(std), "before close")

	// Writes after cleanup fail inside zap and never reach the closed file.
	l.Info("after close")
	std, err = os.ReadFile(filepath.Join(dir, "standard.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(std), "after close")
}
