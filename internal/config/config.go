package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	DatabaseURL          string
	StoreDriver          string
	RedisURL             string
	JWTSecret            string
	DevicePassphraseHash string
	FCMServiceAccount    string
	LogLevel             string
	UploadDir            string

	HomeRadiusMeters float64
	GoalRadiusMeters float64
	MinRegionRadius  float64
	MaxGoalRegions   int

	EventCooldown   time.Duration
	PollInterval    time.Duration
	MessageCooldown time.Duration
	SyncInterval    time.Duration
	PositionMaxAge  time.Duration
}

// Load reads the environment, after .env when one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		DatabaseURL:          getEnv("DATABASE_URL", "goalfence.db"),
		StoreDriver:          getEnv("STORE_DRIVER", "gorm"),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		DevicePassphraseHash: getEnv("DEVICE_PASSPHRASE_HASH", ""),
		FCMServiceAccount:    getEnv("FCM_SERVICE_ACCOUNT", ""),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		UploadDir:            getEnv("UPLOAD_DIR", "uploads"),

		HomeRadiusMeters: getFloat("HOME_RADIUS_M", 80),
		GoalRadiusMeters: getFloat("GOAL_RADIUS_M", 120),
		MinRegionRadius:  getFloat("MIN_REGION_RADIUS_M", 100),
		MaxGoalRegions:   getInt("MAX_GOAL_REGIONS", 15),

		EventCooldown:   getDuration("EVENT_COOLDOWN", 5*time.Second),
		PollInterval:    getDuration("POLL_INTERVAL", 5*time.Second),
		MessageCooldown: getDuration("MESSAGE_COOLDOWN", 5*time.Second),
		SyncInterval:    getDuration("SYNC_INTERVAL", time.Second),
		PositionMaxAge:  getDuration("POSITION_MAX_AGE", 2*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}
