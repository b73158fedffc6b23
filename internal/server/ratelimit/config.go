package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// APIPrefix is the path prefix whose endpoints are rate limited.
const APIPrefix = "/api/"

// DefaultPerMinute is the per-client, per-endpoint request budget for API routes.
const DefaultPerMinute = 60

// EndpointConfig represents rate limiting configuration for a set of paths.
type EndpointConfig struct {
	Path   string        // Exact path, or a prefix when it ends with "/"
	Method string        // HTTP method; empty matches any method
	Limit  int           // Maximum requests per window; 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig builds the limiter configuration for API routes at perMinute
// requests per client and endpoint. RATE_LIMIT_ENABLED, RATE_LIMIT_WHITELIST,
// RATE_LIMIT_BLACKLIST and RATE_LIMIT_CLEANUP_INTERVAL are read from the environment.
func LoadConfig(perMinute int) *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true) && perMinute > 0
	if !enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    0,
		DefaultWindow:   time.Minute,
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: APIEndpointConfigs(perMinute),
	}
}

// APIEndpointConfigs limits every /api/ route to perMinute requests per minute.
// Routes outside /api/ fall through to the default, which is unlimited.
func APIEndpointConfigs(perMinute int) []EndpointConfig {
	return []EndpointConfig{
		{Path: APIPrefix, Limit: perMinute, Window: time.Minute, Burst: perMinute},
	}
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of client addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
