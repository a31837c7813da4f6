package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer         string // issuer name used for sessions and TOTP
	BootstrapToken string // optional: token required to perform bootstrap

	SessionSecret string        // HS256 key for session tokens (min 32 bytes)
	SessionTTL    time.Duration // session token lifetime (default: 12h)
	GrantTTL      time.Duration // authorization code lifetime (default: 10m)
	TokenTTL      time.Duration // access token lifetime (default: 24h)

	DatabaseFile string // path to SQLite database file (default: ./rith.db)
	PepperFile   string // path to password pepper file (default: ./pepper)

	Env                  string // dev, staging, prod (default: dev)
	LogLevel             string // debug, info, warn, error (default: info)
	LogFormat            string // json, text (default: json)
	Port                 int    // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration
	HousekeepingInterval time.Duration
}

func LoadConfig() Config {
	// Local development keeps its settings in a .env file; absence is fine.
	_ = godotenv.Load()

	return Config{
		Issuer:         getEnvOrDefault("RITH_ISSUER", "rith"),
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"),

		SessionSecret: os.Getenv("RITH_SESSION_SECRET"),
		SessionTTL:    getEnvDurationOrDefault("RITH_SESSION_TTL", 12*time.Hour),
		GrantTTL:      getEnvDurationOrDefault("RITH_GRANT_TTL", 10*time.Minute),
		TokenTTL:      getEnvDurationOrDefault("RITH_TOKEN_TTL", 24*time.Hour),

		DatabaseFile: getEnvOrDefault("RITH_DATABASE_FILE", "rith.db"),
		PepperFile:   getEnvOrDefault("RITH_PEPPER_FILE", "pepper"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}
	return defaultValue
}
