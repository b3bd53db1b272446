package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL   string
	JWTSecret     string
	JWTExpiration time.Duration
	ServerPort    string

	// Break policy
	MicroLimitMinutes  int           // daily coffee+wc allowance
	LunchLimitMinutes  int           // daily lunch allowance
	MinWorkBeforeBreak time.Duration // floor before the first break of a shift
	InstantApprovalMax int           // auto-start while fewer teammates are on break
}

func Load() *Config {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:        getEnv("DATABASE_URL", "postgresql://postgres@localhost:5432/breakdesk"),
		JWTSecret:          getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
		JWTExpiration:      24 * time.Hour,
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		MicroLimitMinutes:  getEnvInt("MICRO_LIMIT_MINUTES", 30),
		LunchLimitMinutes:  getEnvInt("LUNCH_LIMIT_MINUTES", 60),
		MinWorkBeforeBreak: time.Duration(getEnvInt("MIN_WORK_BEFORE_BREAK_MINUTES", 60)) * time.Minute,
		InstantApprovalMax: getEnvInt("INSTANT_APPROVAL_MAX_ON_BREAK", 2),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
