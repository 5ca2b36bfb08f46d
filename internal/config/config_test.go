package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "gorm", cfg.StoreDriver)
	assert.Equal(t, 80.0, cfg.HomeRadiusMeters)
	assert.Equal(t, 15, cfg.MaxGoalRegions)
	assert.Equal(t, 5*time.Second, cfg.EventCooldown)
	assert.Equal(t, time.Second, cfg.SyncInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HOME_RADIUS_M", "150.5")
	t.Setenv("MAX_GOAL_REGIONS", "5")
	t.Setenv("POLL_INTERVAL", "30s")
	t.Setenv("SYNC_INTERVAL", "not-a-duration")

	cfg := Load()
	assert.Equal(t, 150.5, cfg.HomeRadiusMeters)
	assert.Equal(t, 5, cfg.MaxGoalRegions)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, time.Second, cfg.SyncInterval)
}
