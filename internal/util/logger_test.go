package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoggerConfig(t *testing.T) {
	dev, err := newLoggerConfig("development", "")
	require.NoError(t, err)
	assert.True(t, dev.Level.Enabled(zap.DebugLevel))
	assert.Equal(t, "console", dev.Encoding)

	prod, err := newLoggerConfig("production", "warn")
	require.NoError(t, err)
	assert.Equal(t, "json", prod.Encoding)
	assert.False(t, prod.Level.Enabled(zap.InfoLevel))
	assert.True(t, prod.Level.Enabled(zap.WarnLevel))
	assert.Equal(t, "cafehub", prod.InitialFields["service"])
	assert.Equal(t, "production", prod.InitialFields["env"])

	_, err = newLoggerConfig("production", "loud")
	assert.Error(t, err)
}
