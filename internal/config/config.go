// Package config provides centralized configuration for weatherdesk.
// It loads configuration from environment variables (with optional .env
// support) and applies sensible defaults.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates configuration for the orchestrator client and the
// relay server.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Client   ClientConfig
	Redis    RedisConfig
	GeoIP    GeoIPConfig
}

// ServerConfig contains relay HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// UpstreamConfig contains settings for the upstream weather service.
// The upstream endpoint is reachable over plain HTTP only.
type UpstreamConfig struct {
	BaseURL     string
	HTTPTimeout time.Duration
}

// ClientConfig contains settings for the orchestrator.
type ClientConfig struct {
	// AccessKey overrides the stored credential when set.
	AccessKey string

	// OriginScheme is the scheme the consuming context is hosted on;
	// "https" forces the relayed route.
	OriginScheme string

	// RelayURL is the relay endpoint used on secure origins. It must be
	// absolute; the orchestrator's HTTP client cannot resolve a relative
	// URL against an origin.
	RelayURL string

	RetryDelay      time.Duration
	RefreshInterval time.Duration
	ReportTTL       time.Duration

	// StatePath is the file-backed store location.
	StatePath string
}

// RedisConfig contains settings for the optional Redis state backend.
type RedisConfig struct {
	Enabled      bool
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// GeoIPConfig contains settings for the geolocation provider.
type GeoIPConfig struct {
	BaseURL string
}

// Load reads configuration from the environment and returns a Config.
// A .env file in the working directory is honored when present.
func Load() *Config {
	// Missing .env files are expected outside development.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Upstream: UpstreamConfig{
			BaseURL:     getEnv("WEATHERSTACK_BASE_URL", "http://api.weatherstack.com"),
			HTTPTimeout: getEnvAsDuration("UPSTREAM_HTTP_TIMEOUT", 30*time.Second),
		},
		Client: ClientConfig{
			AccessKey:       getEnv("WEATHERSTACK_ACCESS_KEY", ""),
			OriginScheme:    getEnv("ORIGIN_SCHEME", "http"),
			RelayURL:        getEnv("RELAY_URL", "http://localhost:8080/api/relay"),
			RetryDelay:      getEnvAsDuration("RETRY_DELAY", 2*time.Second),
			RefreshInterval: getEnvAsDuration("REFRESH_INTERVAL", 5*time.Minute),
			ReportTTL:       getEnvAsDuration("REPORT_TTL", time.Minute),
			StatePath:       getEnv("STATE_PATH", defaultStatePath()),
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", false),
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		GeoIP: GeoIPConfig{
			BaseURL: getEnv("GEOIP_BASE_URL", "http://ip-api.com"),
		},
	}
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()

	if err != nil {
		return ".weatherdesk/state.json"
	}

	return home + "/.weatherdesk/state.json"
}

// getEnv retrieves an environment variable value with a fallback default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer with a
// fallback default.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}

	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean with a
// fallback default.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}

	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration with a
// fallback default.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}

	return defaultValue
}
