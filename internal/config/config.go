// Package config provides configuration loading and validation for repfinder.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/nh-rep-finder/internal/types"
)

// Default values applied by MergeWithDefaults.
const (
	DefaultPort            = 5000
	DefaultRateLimitPerMin = 60
	DefaultReloadInterval  = 5 * time.Minute
	DefaultOpenStatesURL   = "https://v3.openstates.org"
	DefaultGitCommit       = "local"
	DefaultTownsSource     = "data/floterial_by_town.csv"
	DefaultBasesSource     = "data/floterial_by_base.csv"
	DefaultRosterSource    = "data/nh_house_ids.csv"
)

// Duration is a time.Duration that reads from JSON as "5m" or as a number of seconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("duration must be a string or a number of seconds")
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config is the repfinder configuration. All fields are optional in the file;
// environment variables override the file and MergeWithDefaults fills the rest.
type Config struct {
	// Reference sources: paths, file:// or http(s):// URLs
	TownsSource   string `json:"towns_source,omitempty" validate:"required"`
	BasesSource   string `json:"bases_source,omitempty"`
	RosterSource  string `json:"roster_source,omitempty" validate:"required"`
	VotesSource   string `json:"votes_source,omitempty"`
	AliasesSource string `json:"aliases_source,omitempty"`

	TrackedBills   []string `json:"tracked_bills,omitempty"`
	ReloadInterval Duration `json:"reload_interval,omitempty"`

	// Server
	Port            int      `json:"port,omitempty" validate:"min=0,max=65535"`
	AllowedOrigins  []string `json:"allowed_origins,omitempty"`
	RateLimitPerMin int      `json:"rate_limit_per_min,omitempty" validate:"min=0"`
	DebugRoutes     bool     `json:"debug_routes,omitempty"`
	GitCommit       string   `json:"git_commit,omitempty"`

	// Normalizer
	NominatimURL   string `json:"nominatim_url,omitempty" validate:"omitempty,url"`
	NominatimEmail string `json:"nominatim_email,omitempty" validate:"omitempty,email"`
	// NominatimFallback is nil when unset so that the default can apply.
	NominatimFallback *bool `json:"nominatim_fallback,omitempty"`

	// OpenStates export and bill links
	OpenStatesAPIKey string   `json:"openstates_api_key,omitempty"`
	OpenStatesURL    string   `json:"openstates_url,omitempty" validate:"omitempty,url"`
	CacheDir         string   `json:"cache_dir,omitempty"`
	CacheTTL         Duration `json:"cache_ttl,omitempty"`
	DatabaseURL      string   `json:"database_url,omitempty"` // PostgreSQL connection URL

	Verbose bool `json:"verbose,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Resolve builds the effective configuration: the optional JSON file at path,
// then environment overrides, then defaults. The result is validated.
func Resolve(path string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
// Unset or empty variables leave the field alone.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str("FLOTERIAL_TOWN_CSV_URL", &c.TownsSource)
	str("FLOTERIAL_BASE_CSV_URL", &c.BasesSource)
	str("ROSTER_CSV_URL", &c.RosterSource)
	str("VOTES_CSV_URL", &c.VotesSource)
	str("TOWN_ALIASES_CSV_URL", &c.AliasesSource)
	str("NOMINATIM_URL", &c.NominatimURL)
	str("NOMINATIM_EMAIL", &c.NominatimEmail)
	str("OPENSTATES_API_KEY", &c.OpenStatesAPIKey)
	str("OPENSTATES_URL", &c.OpenStatesURL)
	str("DATABASE_URL", &c.DatabaseURL)
	str("RENDER_GIT_COMMIT", &c.GitCommit)

	if v := getenv("TRACKED_BILLS"); strings.TrimSpace(v) != "" {
		c.TrackedBills = splitCSV(v)
	}
	if v := getenv("ALLOWED_ORIGINS"); strings.TrimSpace(v) != "" {
		c.AllowedOrigins = splitCSV(v)
	}

	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: PORT must be an integer: %w", err)
		}
		c.Port = n
	}
	if v := strings.TrimSpace(getenv("RATE_LIMIT_PER_MIN")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: RATE_LIMIT_PER_MIN must be an integer: %w", err)
		}
		c.RateLimitPerMin = n
	}
	if v := strings.TrimSpace(getenv("RELOAD_INTERVAL")); v != "" {
		d, err := parseDurationOrSeconds(v)
		if err != nil {
			return fmt.Errorf("config error: RELOAD_INTERVAL: %w", err)
		}
		c.ReloadInterval = Duration(d)
	}
	if v := strings.TrimSpace(getenv("DEBUG_ROUTES")); v != "" {
		c.DebugRoutes = isTruthy(v)
	}
	if v := strings.TrimSpace(getenv("NOMINATIM_FALLBACK")); v != "" {
		on := isTruthy(v)
		c.NominatimFallback = &on
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.ReloadInterval < 0 {
		return fmt.Errorf("config error: 'reload_interval' must be non-negative")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config error: 'cache_ttl' must be non-negative")
	}
	return nil
}

// Defaults returns the built-in defaults.
func Defaults() Config {
	return Config{
		TownsSource:       DefaultTownsSource,
		BasesSource:       DefaultBasesSource,
		RosterSource:      DefaultRosterSource,
		ReloadInterval:    Duration(DefaultReloadInterval),
		Port:              DefaultPort,
		AllowedOrigins:    []string{"*"},
		RateLimitPerMin:   DefaultRateLimitPerMin,
		GitCommit:         DefaultGitCommit,
		OpenStatesURL:     DefaultOpenStatesURL,
		NominatimFallback: boolPtr(true),
		CacheTTL:          Duration(24 * time.Hour),
	}
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
// DebugRoutes and Verbose cannot distinguish unset from false and are not merged.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	for _, f := range []struct {
		dst *string
		def string
	}{
		{&result.TownsSource, defaults.TownsSource},
		{&result.BasesSource, defaults.BasesSource},
		{&result.RosterSource, defaults.RosterSource},
		{&result.VotesSource, defaults.VotesSource},
		{&result.AliasesSource, defaults.AliasesSource},
		{&result.GitCommit, defaults.GitCommit},
		{&result.NominatimURL, defaults.NominatimURL},
		{&result.NominatimEmail, defaults.NominatimEmail},
		{&result.OpenStatesAPIKey, defaults.OpenStatesAPIKey},
		{&result.OpenStatesURL, defaults.OpenStatesURL},
		{&result.CacheDir, defaults.CacheDir},
		{&result.DatabaseURL, defaults.DatabaseURL},
	} {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}

	if len(result.TrackedBills) == 0 {
		result.TrackedBills = defaults.TrackedBills
	}
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RateLimitPerMin == 0 {
		result.RateLimitPerMin = defaults.RateLimitPerMin
	}
	if result.ReloadInterval == 0 {
		result.ReloadInterval = defaults.ReloadInterval
	}
	if result.CacheTTL == 0 {
		result.CacheTTL = defaults.CacheTTL
	}
	if result.NominatimFallback == nil {
		result.NominatimFallback = defaults.NominatimFallback
	}

	return result
}

// NormalizedTrackedBills returns TrackedBills as canonical bill codes without duplicates.
func (c *Config) NormalizedTrackedBills() []string {
	var out []string
	seen := make(map[string]bool)
	for _, b := range c.TrackedBills {
		code := types.BillCode(b)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

// UseNominatim reports whether addresses the alias table cannot resolve go to Nominatim.
func (c *Config) UseNominatim() bool {
	return c.NominatimFallback == nil || *c.NominatimFallback
}

func boolPtr(v bool) *bool { return &v }

func splitCSV(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDurationOrSeconds(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
