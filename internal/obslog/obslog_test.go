package obslog

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tcases := []struct {
		in   string
		want zapcore.Level
		err  bool
	}{
		{in: "", want: zapcore.InfoLevel},
		{in: "debug", want: zapcore.DebugLevel},
		{in: " WARN ", want: zapcore.WarnLevel},
		{in: "warning", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "verbose", err: true},
	}

	for _, tc := range tcases {
		t.Run(tc.in, func(t *testing.T) {
			lvl, err := ParseLevel(tc.in)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, lvl)
		})
	}
}

func TestNewWithSink_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithSink("warn", "json", zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("room not created", zap.String("title", "ENG-GER 42"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), "expected exactly one JSON line, got %q", buf.String())
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "room not created", entry["msg"])
	assert.Equal(t, "ENG-GER 42", entry["title"])
}

func TestNewWithSink_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithSink("debug", "", zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Debug("relay skipped")
	require.NoError(t, logger.Sync())
	assert.Contains(t, buf.String(), "DEBUG | ")
	assert.Contains(t, buf.String(), "relay skipped")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", "json")
	assert.Error(t, err)
}
