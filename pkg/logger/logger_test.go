package logger

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	t.Run("parses level", func(t *testing.T) {
		require.NoError(t, Init(Config{Level: "debug"}))
		assert.Equal(t, logrus.DebugLevel, Logger.GetLevel())
		assert.Empty(t, GetCurrentLogFile())
	})

	t.Run("unknown level falls back to warn", func(t *testing.T) {
		require.NoError(t, Init(Config{Level: "loud"}))
		assert.Equal(t, logrus.WarnLevel, Logger.GetLevel())
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "sdk.log")
		require.NoError(t, Init(Config{Level: "info", OutputFile: path, MaxSize: 1}))
		assert.Equal(t, path, GetCurrentLogFile())
	})
}

func TestComponent(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	var buf bytes.Buffer
	require.NoError(t, Init(Config{Level: "info"}))
	SetOutput(&buf)

	Component("specfetch").Info("hello")
	assert.Contains(t, buf.String(), "component=specfetch")
	assert.Contains(t, buf.String(), "hello")
}
