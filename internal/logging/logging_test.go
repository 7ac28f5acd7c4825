package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/andriandrian/lifeline-admin/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(config.LogConfig{Level: "debug", Format: "json"}, &buf)

	logger.WithField("entity", "faq").Debug("deleted")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "faq", line["entity"])
	require.Equal(t, "deleted", line["msg"])
}

func TestNewWithOutput_BadLevel(t *testing.T) {
	logger := NewWithOutput(config.LogConfig{Level: "loud"}, &bytes.Buffer{})
	require.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
