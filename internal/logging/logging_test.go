package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, zerolog.WarnLevel, New(&buf, "WARN", false).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New(&buf, "", false).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New(&buf, "loud", false).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, New(&buf, "error", true).GetLevel())
}

func TestNewJSONWritesStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSON(&buf, "info")
	l.Debug().Msg("hidden")
	l.Info().Str("path", "/report").Msg("served")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "served", line["message"])
	assert.Equal(t, "/report", line["path"])
	assert.Equal(t, "info", line["level"])
}
