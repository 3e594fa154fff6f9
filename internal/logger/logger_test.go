package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNew_JSONWithChild(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "json")

	log.With("wave", "2023-05").Info("wave processed", "rows", 5)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "wave processed", entry["msg"])
	assert.Equal(t, "2023-05", entry["wave"])
	assert.EqualValues(t, 5, entry["rows"])
}

func TestSetLevel_AffectsChildren(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "text")
	child := log.With("component", "test")

	child.Info("hidden")
	assert.Empty(t, buf.String())

	log.SetLevel("debug")
	child.Debug("visible")
	assert.True(t, strings.Contains(buf.String(), "visible"))
	assert.Equal(t, slog.LevelDebug, child.Level())
}
