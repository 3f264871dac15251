package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		logger, err := NewLogger(nil)
		require.NoError(t, err)
		assert.True(t, logger.Enabled(zapcore.InfoLevel))
		assert.False(t, logger.Enabled(zapcore.DebugLevel))
	})

	t.Run("console format", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Format = "console"
		_, err := NewLogger(cfg)
		require.NoError(t, err)
	})

	t.Run("invalid format", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Format = "xml"
		_, err := NewLogger(cfg)
		assert.Error(t, err)
	})

	t.Run("constant fields", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Fields = map[string]string{"service": "docsearchd"}
		logger, err := NewLogger(cfg)
		require.NoError(t, err)
		require.NotNil(t, logger.Underlying())
	})
}

func TestNamedAndWith(t *testing.T) {
	logger := NewNop()
	child := logger.Named("chunker").With()
	assert.NotNil(t, child)
	assert.NotSame(t, logger, child)
}
