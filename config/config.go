package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gym-booking/models"
)

type Config struct {
	// Server configuration
	Environment string

	// Booking configuration
	CapacityDefault int

	// Reminder configuration
	LeadTimes       []models.LeadTime
	ToleranceWindow time.Duration
	MinTickInterval time.Duration
	DeliveryTimeout time.Duration

	// Redis configuration
	RedisURL         string
	RedisPassword    string
	RedisDB          int
	ScheduleCacheTTL time.Duration

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Google mirror configuration
	GoogleCredentialsBase64 string
	GoogleCalendarID        string
	GoogleSpreadsheetID     string
	MirrorTimeout           time.Duration

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),

		// Booking
		CapacityDefault: getEnvAsInt("CAPACITY_DEFAULT", 10),

		// Reminders
		LeadTimes:       getEnvAsLeadTimes("REMINDER_LEAD_TIMES", "24h,2h"),
		ToleranceWindow: getEnvAsDuration("REMINDER_TOLERANCE", "30m"),
		MinTickInterval: getEnvAsDuration("REMINDER_MIN_TICK", "15m"),
		DeliveryTimeout: getEnvAsDuration("DELIVERY_TIMEOUT", "10s"),

		// Redis
		RedisURL:         getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		ScheduleCacheTTL: getEnvAsDuration("SCHEDULE_CACHE_TTL", "1m"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Google mirrors
		GoogleCredentialsBase64: getEnv("GOOGLE_CREDENTIALS_BASE64", ""),
		GoogleCalendarID:        getEnv("GOOGLE_CALENDAR_ID", ""),
		GoogleSpreadsheetID:     getEnv("GOOGLE_SPREADSHEET_ID", ""),
		MirrorTimeout:           getEnvAsDuration("MIRROR_TIMEOUT", "15s"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

// TickInterval returns the sweep cadence for a lead time: lead/48, bounded
// below by MinTickInterval so short leads don't spin. With the defaults
// that gives 30m for the 24h lead and 15m for the 2h lead.
func (c *Config) TickInterval(lead models.LeadTime) time.Duration {
	tick := lead.Duration() / 48
	if tick < c.MinTickInterval {
		tick = c.MinTickInterval
	}
	return tick
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsLeadTimes(key string, defaultValue string) []models.LeadTime {
	leads := parseLeadTimes(getEnv(key, defaultValue))
	if len(leads) == 0 {
		leads = parseLeadTimes(defaultValue)
	}
	return leads
}

func parseLeadTimes(value string) []models.LeadTime {
	leads := []models.LeadTime{}
	for _, part := range strings.Split(value, ",") {
		d, err := time.ParseDuration(strings.TrimSpace(part))
		if err != nil || d <= 0 {
			continue
		}
		leads = append(leads, models.LeadTime(d))
	}
	return leads
}
