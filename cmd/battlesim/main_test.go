package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/sacredcombat/internal/config"
)

func TestNewLogger(t *testing.T) {
	cfg := config.DefaultSim()
	cfg.LogLevel = "warn"
	var buf bytes.Buffer

	logger, err := newLogger(cfg, &buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLogger_BadLevel(t *testing.T) {
	cfg := config.DefaultSim()
	cfg.LogLevel = "loud"

	logger, err := newLogger(cfg, &bytes.Buffer{})
	assert.Error(t, err)
	assert.Nil(t, logger)
}
