package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSetup_Levels(t *testing.T) {
	logger, err := Setup(false, "warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.Same(t, Logger, logger)

	logger, err = Setup(true, "error")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel), "debug overrides the level")
}

func TestSetup_RejectsUnknownLevel(t *testing.T) {
	_, err := Setup(false, "loud")
	assert.Error(t, err)
}

func TestNewConfig(t *testing.T) {
	assert.Equal(t, "json", newConfig(false, false).Encoding)
	assert.Equal(t, "console", newConfig(false, true).Encoding)
	assert.Equal(t, "console", newConfig(true, false).Encoding)
}
