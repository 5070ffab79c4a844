package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_File(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Output = OutputFile
	cfg.Dir = dir
	cfg.Name = "test.log"

	logger, err := New(cfg)
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestNew_InvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_UnknownOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = "syslog"

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_Discard(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = OutputDiscard

	logger, err := New(cfg)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(0))
}
