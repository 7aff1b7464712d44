package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress   string
	DBPath          string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration

	// Selection response cache
	SelectionTTL time.Duration
	RedisAddr    string // empty means the in-process cache
	RedisPass    string
	RedisDB      int

	// Rate gate; 0 disables
	RateLimit  int
	RateWindow time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()
	return &Config{
		ServerAddress:   getenvDefault("SERVER_ADDRESS", ":8080"),
		DBPath:          getenvDefault("DB_PATH", "quiz.db"),
		ShutdownTimeout: getDurationDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		RequestTimeout:  getDurationDefault("REQUEST_TIMEOUT", 10*time.Second),
		SelectionTTL:    getDurationDefault("SELECTION_CACHE_TTL", 5*time.Minute),
		RedisAddr:       os.Getenv("CACHE_REDIS_ADDR"),
		RedisPass:       os.Getenv("CACHE_REDIS_PASSWORD"),
		RedisDB:         getIntDefault("CACHE_REDIS_DB", 0),
		RateLimit:       getIntDefault("RATE_LIMIT_PER_MINUTE", 0),
		RateWindow:      getDurationDefault("RATE_LIMIT_WINDOW", time.Minute),
	}
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getDurationDefault(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func getIntDefault(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid integer: %v", k, v, err)
	}
	return n
}
