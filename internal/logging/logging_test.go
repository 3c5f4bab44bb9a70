package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit_FileOutputAndLevel(t *testing.T) {
	t.Cleanup(Replace(nil))

	out := filepath.Join(t.TempDir(), "x.log")
	require.NoError(t, Init(Config{Level: "warn", Format: "json", OutputPath: out}))

	assert.False(t, L().Core().Enabled(zapcore.InfoLevel))
	SetLevel("debug")
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel))

	SetLevel("nonsense")
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel), "invalid levels are ignored")
	SetLevel("info")
}

func TestNamed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(Replace(zap.New(core)))

	Named("query").Info("page loaded", zap.Int("items", 3))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "query", entries[0].LoggerName)
	assert.Equal(t, int64(3), entries[0].ContextMap()["items"])
}

func TestL_DefaultsBeforeInit(t *testing.T) {
	t.Cleanup(Replace(nil))
	assert.NotNil(t, L())
	assert.False(t, L().Core().Enabled(zapcore.InfoLevel))
}
