package logx

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vitrine/internal/config"
)

func TestNew_ProductionWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Environment: config.Production, Out: &buf})

	l.Debug().Msg("hidden")
	l.Info().Str("route", "/products").Msg("served")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "/products", entry["route"])
	assert.Equal(t, "served", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNew_ProductionVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Environment: config.Production, Verbose: true, Out: &buf})
	l.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNew_DevelopmentConsole(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Environment: config.Development, Out: &buf})
	l.Debug().Msg("probe")

	out := buf.String()
	assert.Contains(t, out, "probe")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "console output is not JSON")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	assert.NotPanics(t, func() { OrNop(nil).Info().Msg("dropped") })

	var buf bytes.Buffer
	l := New(Options{Environment: config.Production, Out: &buf})
	assert.Same(t, &l, OrNop(&l))
}
