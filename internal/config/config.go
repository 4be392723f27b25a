package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	GraphBaseURL string
	AccessToken  string
	AdAccountID  string
	RedisAddr    string // empty selects the in-memory sales repository
	HTTPTimeout  time.Duration
	CacheTTL     time.Duration
	LookbackDays int
	LogLevel     slog.Level
}

func FromEnv() Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	ttl := 5 * time.Minute
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			ttl = d
		}
	}
	lvl := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = slog.LevelDebug
	}
	return Config{
		Port:         envOr("PORT", "8080"),
		GraphBaseURL: envOr("META_GRAPH_URL", "https://graph.facebook.com/v18.0"),
		AccessToken:  os.Getenv("META_ACCESS_TOKEN"),
		AdAccountID:  os.Getenv("META_AD_ACCOUNT_ID"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		HTTPTimeout:  to,
		CacheTTL:     ttl,
		LookbackDays: 30,
		LogLevel:     lvl,
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
