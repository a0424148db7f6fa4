package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CBR_MARGIN", "2.5")
	t.Setenv("REMINDER_DAYS", "7")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2.5, cfg.CBRMargin)
	assert.Equal(t, 7, cfg.ReminderDays)
}

func TestNewConfigRejectsNegativeReminderWindow(t *testing.T) {
	t.Setenv("REMINDER_DAYS", "-1")

	_, err := NewConfig()
	assert.Error(t, err)
}

func TestNewConfigIgnoresUnparsableNumbers(t *testing.T) {
	t.Setenv("CBR_MARGIN", "lots")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.CBRMargin)
}
