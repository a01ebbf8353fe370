package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextFieldsAreAttached(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{ServiceName: "reservations", Level: ParseLevel("debug"), Output: &buf})

	ctx := l.WithRequestID(context.Background(), "req-1")
	l.Info(ctx).Int("tables", 3).Msg("allocated")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "reservations", line["service"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, float64(3), line["tables"])
	assert.Equal(t, "allocated", line["message"])
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf})

	l.Debug(context.Background()).Msg("hidden")
	assert.Empty(t, buf.String())

	l.Info(context.Background()).Msg("shown")
	assert.Contains(t, buf.String(), `"level":"info"`)
}

func TestExplicitDebugLevelIsKept(t *testing.T) {
	var buf bytes.Buffer
	lvl := zerolog.DebugLevel
	l := New(Options{Level: &lvl, Output: &buf})

	l.Debug(context.Background()).Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, *ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.InfoLevel, *ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, *ParseLevel("loud"))
}
