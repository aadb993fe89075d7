package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Goopi7/crop-connect/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"defaults", config.LoggingConfig{}, zapcore.InfoLevel, zapcore.DebugLevel},
		{"debug console", config.LoggingConfig{Level: "DEBUG", Format: "console"}, zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"warn json", config.LoggingConfig{Level: "warn", Format: "json"}, zapcore.WarnLevel, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.enabled))
			assert.False(t, log.Core().Enabled(tt.muted))
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)

	_, err = New(config.LoggingConfig{Format: "xml"})
	assert.Error(t, err)
}
