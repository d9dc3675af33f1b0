package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		want    zapcore.Level
		wantErr bool
	}{
		{name: "debug", level: "debug", want: zapcore.DebugLevel},
		{name: "warn with padding", level: "  WARN ", want: zapcore.WarnLevel},
		{name: "error", level: "error", want: zapcore.ErrorLevel},
		{name: "unknown level", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log = nil
			err := Initialize(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, L().Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, L().Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestLBeforeInitialize(t *testing.T) {
	log = nil
	assert.NotNil(t, L())
	assert.NotPanics(t, func() {
		Info("not initialized")
		Sync()
	})
}
