package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL   string
	SecretKey     string
	Port          string
	Environment   string
	LogLevel      string
	LogFile       string
	SessionMaxAge time.Duration
}

// Load reads an optional .env file (ENV_FILE overrides the name) and then
// the process environment.
func Load() Config {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil {
		logrus.Debugf("No %s file found, using system environment variables", envFile)
	}

	hours, err := strconv.Atoi(getEnv("SESSION_MAX_AGE_HOURS", "168"))
	if err != nil || hours <= 0 {
		hours = 168
	}

	return Config{
		DatabaseURL:   getEnv("DATABASE_URL", "postgresql:///warbler"),
		SecretKey:     getEnv("SECRET_KEY", "it's a secret"),
		Port:          getEnv("PORT", "5000"),
		Environment:   getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
		SessionMaxAge: time.Duration(hours) * time.Hour,
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
