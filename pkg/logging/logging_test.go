package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, true},
		{" WARNING ", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.raw)
		assert.Equal(t, tt.want, got, "ParseLevel(%q)", tt.raw)
		assert.Equal(t, tt.ok, ok, "ParseLevel(%q) ok", tt.raw)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogTimestamp, "true")
	t.Setenv(EnvLogNoColor, "not-a-bool")

	cfg := defaultConfig(ProfileTest)
	applyEnvOverrides(&cfg)
	assert.Equal(t, zerolog.ErrorLevel, cfg.Level)
	assert.True(t, cfg.Timestamp)
	assert.False(t, cfg.NoColor)
}

func TestNewWritesWithoutTimestamp(t *testing.T) {
	var buf bytes.Buffer
	cfg := defaultConfig(ProfileTest)
	WithOutput(&buf)(&cfg)
	WithNoColor(true)(&cfg)

	l := New(cfg)
	l.Debug().Str("op", "union").Msg("folded child")
	l.Trace().Msg("hidden")

	out := buf.String()
	assert.Contains(t, out, "folded child")
	assert.Contains(t, out, "op=union")
	assert.NotContains(t, out, "hidden")
}

func TestWithLevelIgnoresUnknown(t *testing.T) {
	cfg := defaultConfig(ProfileRuntime)
	WithLevel("shouty")(&cfg)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level)
	WithLevel("trace")(&cfg)
	assert.Equal(t, zerolog.TraceLevel, cfg.Level)
}
