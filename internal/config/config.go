package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGoogle = "google"
	ProviderOSRM   = "osrm"
)

// Config is read once at startup and never mutated afterwards.
type Config struct {
	Env              string
	HTTPAddr         string
	MapsAPIKey       string
	RoutingProvider  string
	PositionstackKey string
	PositionstackURL string
	OSRMURL          string
	RedisAddress     string
	DisableRedis     bool
	GeocodeCacheTTL  time.Duration
	ProviderTimeout  time.Duration
	CORSOrigins      []string
	NavigatePerMin   int
}

// Load reads the process environment, after merging an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":3000"),
		MapsAPIKey:       strings.TrimSpace(getEnv("GOOGLE_MAPS_API_KEY", "")),
		RoutingProvider:  strings.ToLower(getEnv("ROUTING_PROVIDER", ProviderGoogle)),
		PositionstackKey: getEnv("POSITIONSTACK_APIKEY", ""),
		PositionstackURL: getEnv("POSITIONSTACK_BASEURL", "http://api.positionstack.com/v1"),
		OSRMURL:          getEnv("OSRM_BASEURL", ""),
		RedisAddress:     getEnv("REDIS_ADDRESS", ""),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.DisableRedis, err = parseBool("DISABLE_REDIS", false); err != nil {
		return nil, err
	}
	if cfg.GeocodeCacheTTL, err = parseDuration("GEOCODE_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ProviderTimeout, err = parseDuration("PROVIDER_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.NavigatePerMin, err = parseInt("NAVIGATE_RATE_PER_MINUTE", 60); err != nil {
		return nil, err
	}
	if cfg.RedisAddress == "" {
		cfg.DisableRedis = true
	}

	if cfg.MapsAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is required")
	}
	switch cfg.RoutingProvider {
	case ProviderGoogle:
	case ProviderOSRM:
		if cfg.OSRMURL == "" {
			return nil, fmt.Errorf("OSRM_BASEURL is required when ROUTING_PROVIDER is osrm")
		}
		if cfg.PositionstackKey == "" {
			return nil, fmt.Errorf("POSITIONSTACK_APIKEY is required when ROUTING_PROVIDER is osrm")
		}
	default:
		return nil, fmt.Errorf("unknown ROUTING_PROVIDER %q (want google or osrm)", cfg.RoutingProvider)
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseBool(key string, fallback bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
