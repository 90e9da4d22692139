package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, Init(Config{Level: "debug", Format: "json", OutputPath: path}))
	Info("scan finished", zap.Int("entries", 3))
	_ = Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scan finished")
	assert.Contains(t, string(data), `"entries":3`)
}

func TestSetLevelFiltersDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, Init(Config{Level: "info", Format: "json", OutputPath: path}))
	Debug("hidden")
	SetLevel("debug")
	Debug("visible")
	_ = Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "visible")
}

func TestSetReplacesLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	Set(zap.New(core))
	Warn("careful")
	assert.Equal(t, 1, logs.FilterMessage("careful").Len())
}
