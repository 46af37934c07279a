package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gym-booking/models"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, []models.LeadTime{
		models.LeadTime(24 * time.Hour),
		models.LeadTime(2 * time.Hour),
	}, cfg.LeadTimes)
	assert.Equal(t, 30*time.Minute, cfg.ToleranceWindow)
	assert.Equal(t, 10, cfg.CapacityDefault)
}

func TestLeadTimesFromEnv(t *testing.T) {
	t.Setenv("REMINDER_LEAD_TIMES", "48h, 1h")
	cfg := LoadConfig()
	assert.Equal(t, []models.LeadTime{
		models.LeadTime(48 * time.Hour),
		models.LeadTime(time.Hour),
	}, cfg.LeadTimes)

	// Garbage falls back to the defaults rather than running with no leads.
	t.Setenv("REMINDER_LEAD_TIMES", "soon,whenever")
	cfg = LoadConfig()
	assert.Len(t, cfg.LeadTimes, 2)
}

func TestTickInterval(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, 30*time.Minute, cfg.TickInterval(models.LeadTime(24*time.Hour)))
	// Short leads are clamped so the sweep doesn't spin.
	assert.Equal(t, 15*time.Minute, cfg.TickInterval(models.LeadTime(2*time.Hour)))
	assert.Equal(t, 15*time.Minute, cfg.TickInterval(models.LeadTime(10*time.Minute)))
}
