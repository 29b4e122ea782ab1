package applog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	log, closeLog, err := New(dir, false)
	require.NoError(t, err)
	log.Info("erd loaded")
	log.Debug("hidden at info level")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO")
	assert.Contains(t, string(data), "erd loaded")
	assert.NotContains(t, string(data), "hidden at info level")
}

func TestNewVerbose(t *testing.T) {
	dir := t.TempDir()

	log, closeLog, err := New(dir, true)
	require.NoError(t, err)
	defer closeLog()
	log.Debug("visible")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "visible")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := Nop()
	assert.Same(t, l, OrNop(l))
}

func TestCloseReleasesFile(t *testing.T) {
	dir := t.TempDir()

	log, closeLog, err := New(dir, false)
	require.NoError(t, err)
	log.Info("before close")
	require.NoError(t, closeLog())

	// A second close reports the file as already closed.
	require.ErrorIs(t, closeLog(), os.ErrClosed)

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "before close")
}
