package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warning", LevelWarn},
		{" WARN ", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat(""))
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithFormat(&buf, LevelWarn, FormatText)

	l.Info("hidden")
	l.Warn("shown", "body", 4)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "body=4")
	assert.False(t, l.Enabled(LevelInfo))
	assert.True(t, l.Enabled(LevelError))

	l.SetLevel(LevelDebug)
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithFormat(&buf, LevelInfo, FormatJSON).With("pass", "fine")

	l.Info("event", "kind", "Opposition")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "event", rec["msg"])
	assert.Equal(t, "Opposition", rec["kind"])
	assert.Equal(t, "fine", rec["pass"])
	assert.Equal(t, "INFO", rec["level"])
}

func TestLogger_SetOutput(t *testing.T) {
	var first, second bytes.Buffer
	l := NewWithFormat(&first, LevelInfo, FormatText)

	l.Info("one")
	l.SetOutput(&second)
	l.Info("two")

	assert.True(t, strings.Contains(first.String(), "one"))
	assert.False(t, strings.Contains(first.String(), "two"))
	assert.True(t, strings.Contains(second.String(), "two"))
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.False(t, l.Enabled(LevelError))
	assert.NotPanics(t, func() { l.Error("nothing", "k", "v") })
}
