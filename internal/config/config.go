package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Env                 string
	HTTPAddr            string
	SheetAPIBaseURL     string
	SheetAPIToken       string
	RedisURL            string
	SnapshotCacheTTL    time.Duration
	RabbitMQURL         string
	JWTSecret           string
	ReportTimezone      string
	CorsAllowedOrigins  []string
	WSHeartbeatInterval time.Duration

	ObjectStoreEndpoint        string
	ObjectStoreRegion          string
	ObjectStoreAccessKeyID     string
	ObjectStoreSecretAccessKey string
	ObjectStoreBucket          string
	ObjectStorePublicBaseURL   string
}

func Load() Config {
	return Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8090"),
		SheetAPIBaseURL:     getEnv("SHEET_API_BASE_URL", ""),
		SheetAPIToken:       getEnv("SHEET_API_TOKEN", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		SnapshotCacheTTL:    getEnvDuration("SNAPSHOT_CACHE_TTL", 5*time.Minute),
		RabbitMQURL:         getEnv("RABBITMQ_URL", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		ReportTimezone:      getEnv("REPORT_TIMEZONE", ""),
		CorsAllowedOrigins:  splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		WSHeartbeatInterval: getEnvDuration("WS_HEARTBEAT_INTERVAL", 30*time.Second),

		ObjectStoreEndpoint:        getEnv("OBJECT_STORE_ENDPOINT", ""),
		ObjectStoreRegion:          getEnv("OBJECT_STORE_REGION", "auto"),
		ObjectStoreAccessKeyID:     getEnv("OBJECT_STORE_ACCESS_KEY_ID", ""),
		ObjectStoreSecretAccessKey: getEnv("OBJECT_STORE_SECRET_ACCESS_KEY", ""),
		ObjectStoreBucket:          getEnv("OBJECT_STORE_BUCKET", ""),
		ObjectStorePublicBaseURL:   getEnv("OBJECT_STORE_PUBLIC_BASE_URL", ""),
	}
}

// ReportLocation resolves the configured report timezone, falling back to the
// process-local zone so report day/month boundaries match the shop's clock.
func (c Config) ReportLocation() *time.Location {
	if strings.TrimSpace(c.ReportTimezone) == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
