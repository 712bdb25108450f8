package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatAuto, f)
	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestAutoFormatOnBufferIsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, FormatAuto, &slog.HandlerOptions{Level: LevelTrace}))
	logger.Log(context.Background(), LevelTrace, "rendered", "id", "model/front")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "TRACE", rec["level"])
	assert.Equal(t, "model/front", rec["id"])
}

func TestMultiHandlerWithLevelFilter(t *testing.T) {
	var low, high bytes.Buffer
	h := NewMultiHandler(
		NewLevelFilter(func(l slog.Level) bool { return l < slog.LevelError }, NewHandler(&low, FormatText, nil)),
		NewLevelFilter(func(l slog.Level) bool { return l >= slog.LevelError }, NewHandler(&high, FormatText, nil)),
	)
	logger := slog.New(h).With("component", "test")
	logger.Info("hello")
	logger.Error("boom")

	assert.Contains(t, low.String(), "msg=hello")
	assert.Contains(t, low.String(), "component=test")
	assert.NotContains(t, low.String(), "boom")
	assert.Contains(t, high.String(), "msg=boom")
	assert.NotContains(t, high.String(), "hello")
}

func TestRawLogger(t *testing.T) {
	var buf bytes.Buffer
	raw := NewRaw(&buf)
	raw.Log("Shop/pom.xml", []byte("<project/>"))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[0], "--- Shop/pom.xml (10 bytes)"))
	assert.Equal(t, "<project/>", lines[1])
	assert.Equal(t, "", lines[2])

	NewRaw(nil).Log("ignored", []byte("x"))
}
