package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures process-level configuration. FromEnv builds it from
// environment variables so main stays lean.
type Config struct {
	Addr string

	PostgresURL string
	RedisURL    string

	// Primary object store (remote). Empty BaseURL disables the primary and
	// every write lands on the local fallback.
	ObjectStoreBaseURL string
	ObjectStoreAPIKey  string
	ObjectStoreTimeout time.Duration

	// Local durable fallback root for document bytes.
	FallbackDir string

	// Notification webhook endpoint. Empty means log-only dispatch.
	NotifyWebhookURL string

	UploadMaxAttempts int
}

// FromEnv builds a Config from environment variables, applying development
// defaults where unset.
func FromEnv() Config {
	cfg := Config{
		Addr:               getEnv("INTAKE_ADDR", ":8080"),
		PostgresURL:        os.Getenv("INTAKE_POSTGRES_URL"),
		RedisURL:           os.Getenv("INTAKE_REDIS_URL"),
		ObjectStoreBaseURL: os.Getenv("INTAKE_OBJECT_STORE_URL"),
		ObjectStoreAPIKey:  os.Getenv("INTAKE_OBJECT_STORE_API_KEY"),
		ObjectStoreTimeout: getDuration("INTAKE_OBJECT_STORE_TIMEOUT", 10*time.Second),
		FallbackDir:        getEnv("INTAKE_FALLBACK_DIR", "var/documents"),
		NotifyWebhookURL:   os.Getenv("INTAKE_NOTIFY_WEBHOOK_URL"),
		UploadMaxAttempts:  getInt("INTAKE_UPLOAD_MAX_ATTEMPTS", 3),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// RedisConfig carries connection tuning for the Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisFromEnv builds a RedisConfig with conservative pool defaults.
func RedisFromEnv() RedisConfig {
	return RedisConfig{
		URL:          os.Getenv("INTAKE_REDIS_URL"),
		PoolSize:     getInt("INTAKE_REDIS_POOL_SIZE", 10),
		MinIdleConns: getInt("INTAKE_REDIS_MIN_IDLE", 2),
		DialTimeout:  getDuration("INTAKE_REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getDuration("INTAKE_REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getDuration("INTAKE_REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}
