package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	DataDir    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AnthropicAPIKey   string
	AnthropicModel    string
	AnthropicMaxTokens int

	PageSpeedAPIKey   string
	PageSpeedStrategy string

	FetchTimeout time.Duration

	RateLimitPerSecond float64
	RateLimitBurst     float64
}

// Load reads configuration from the environment. A .env.development file
// takes precedence over .env for local development.
func Load() *Config {
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}

	return &Config{
		ServerPort:         getEnv("PORT", "8082"),
		GinMode:            getEnv("GIN_MODE", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DataDir:            getEnv("DATA_DIR", "data"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:     getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		AnthropicMaxTokens: getEnvAsInt("ANTHROPIC_MAX_TOKENS", 2048),
		PageSpeedAPIKey:    getEnv("PAGESPEED_API_KEY", ""),
		PageSpeedStrategy:  getEnv("PAGESPEED_STRATEGY", "mobile"),
		FetchTimeout:       getEnvAsDuration("FETCH_TIMEOUT_SECONDS", 15) * time.Second,
		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 2),
		RateLimitBurst:     getEnvAsFloat("RATE_LIMIT_BURST", 5),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback))
}
