package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithWriterHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(NewWithWriter(&buf, "warn"), "relay")

	logger.Info("dropped")
	require.Zero(t, buf.Len())

	logger.Warn("kept", "seq", 3)
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "kept", line["msg"])
	require.Equal(t, "relay", line["component"])
	require.EqualValues(t, 3, line["seq"])
}

func TestNewWithWriterFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "loud")

	logger.Debug("dropped")
	require.Zero(t, buf.Len())
	logger.Info("kept")
	require.NotZero(t, buf.Len())
}
