package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatcher_ReloadsOnFileWrite(t *testing.T) {
	dir := t.TempDir()

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(dir, logr.Discard(), func(c *Config) {
		reloaded <- c
	})
	require.NoError(t, err)
	defer w.Close()

	t.Setenv("NODEGUARDIAN_MAX_CONCURRENT_CHECKS", "7")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "smtp-password"), []byte("hunter2"), 0o600))

	select {
	case c := <-reloaded:
		assert.Equal(t, 7, c.MaxConcurrentChecks)
	case <-time.After(2 * time.Second):
		t.Fatal("onReload was not called after a file write in the watched directory")
	}
}

func TestNewWatcher_UnknownDirReturnsError(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "does-not-exist"), logr.Discard(), func(*Config) {})
	assert.Error(t, err)
}
