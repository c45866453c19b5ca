package logs

import (
	"bytes"
	"log/slog"
	"testing"

	"assettrack/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLogLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(config.Log{Level: "info"}, &buf)
	require.NoError(t, err)

	logger.Info("asset fetched", slog.String("tag_id", "PJ-A001"))
	logger.Debug("hidden")

	assert.Contains(t, buf.String(), `"tag_id":"PJ-A001"`)
	assert.NotContains(t, buf.String(), "hidden")
}
