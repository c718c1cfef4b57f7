package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	LogLevel           string
	Port               string
	PublicBaseURL      string
	StoragePath        string
	DatabaseURL        string
	RedisURL           string
	GeoIPDBPath        string
	CORSAllowedOrigins []string
	GeminiAPIKey       string
	GeminiBaseURL      string
	GeminiTextModel    string
	VeoModel           string
	VeoPollInterval    time.Duration
	VeoMaxPollAttempts int
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	ShutdownTimeout    time.Duration
	DBMaxConns         int32
	SlowQuery          time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "5000")
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		LogLevel:           strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		Port:               port,
		PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		StoragePath:        getEnv("STORAGE_PATH", "./storage"),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:           strings.TrimSpace(os.Getenv("REDIS_URL")),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		GeminiAPIKey:       strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiTextModel:    getEnv("GEMINI_TEXT_MODEL", "gemini-2.0-flash"),
		VeoModel:           getEnv("VEO_MODEL", "veo-3.0-generate-preview"),
		VeoPollInterval:    time.Second * time.Duration(getEnvInt("VEO_POLL_INTERVAL_SECONDS", 10)),
		VeoMaxPollAttempts: getEnvInt("VEO_MAX_POLL_ATTEMPTS", 60),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		ShutdownTimeout:    time.Second * time.Duration(getEnvInt("HTTP_SHUTDOWN_TIMEOUT_SECONDS", 30)),
		DBMaxConns:         int32(getEnvInt("DB_MAX_CONNS", 10)),
		SlowQuery:          time.Millisecond * time.Duration(getEnvInt("DB_SLOW_QUERY_MS", 500)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 5),
	}
	if cfg.DBMaxConns <= 0 {
		cfg.DBMaxConns = 10
	}

	if cfg.VeoPollInterval <= 0 {
		return nil, fmt.Errorf("VEO_POLL_INTERVAL_SECONDS must be positive")
	}
	if cfg.VeoMaxPollAttempts <= 0 {
		return nil, fmt.Errorf("VEO_MAX_POLL_ATTEMPTS must be positive")
	}

	// A generation request stays open for the whole polling window.
	pollWindow := cfg.VeoPollInterval*time.Duration(cfg.VeoMaxPollAttempts) + 2*time.Minute
	cfg.HTTPWriteTimeout = time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", int(pollWindow/time.Second)))
	if cfg.HTTPWriteTimeout < pollWindow {
		cfg.HTTPWriteTimeout = pollWindow
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
