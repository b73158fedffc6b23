package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"towns_source": "https://example.com/towns.csv",
		"roster_source": "data/roster.csv",
		"tracked_bills": ["HB 1", "SB96"],
		"reload_interval": "10m",
		"cache_ttl": 3600,
		"port": 8080,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://example.com/towns.csv", cfg.TownsSource)
	assert.Equal(t, "data/roster.csv", cfg.RosterSource)
	assert.Equal(t, []string{"HB 1", "SB96"}, cfg.TrackedBills)
	assert.Equal(t, Duration(10*time.Minute), cfg.ReloadInterval)
	assert.Equal(t, Duration(time.Hour), cfg.CacheTTL)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_BadDuration(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"reload_interval": "soon"}`), 0644))

	_, err := LoadConfig(tmpFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestApplyEnv(t *testing.T) {
	cfg := &Config{TownsSource: "file.csv", Port: 9000}

	err := cfg.ApplyEnv(envMap(map[string]string{
		"FLOTERIAL_TOWN_CSV_URL": " https://example.com/towns.csv ",
		"ROSTER_CSV_URL":         "roster.csv",
		"TRACKED_BILLS":          "HB1, SB 96,,HB2",
		"ALLOWED_ORIGINS":        "https://a.example, https://b.example",
		"PORT":                   "8081",
		"RATE_LIMIT_PER_MIN":     "30",
		"RELOAD_INTERVAL":        "120",
		"DEBUG_ROUTES":           "1",
		"RENDER_GIT_COMMIT":      "abc123",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/towns.csv", cfg.TownsSource)
	assert.Equal(t, "roster.csv", cfg.RosterSource)
	assert.Equal(t, []string{"HB1", "SB 96", "HB2"}, cfg.TrackedBills)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
	assert.Equal(t, Duration(2*time.Minute), cfg.ReloadInterval)
	assert.True(t, cfg.DebugRoutes)
	assert.Equal(t, "abc123", cfg.GitCommit)
}

func TestApplyEnv_EmptyLeavesFileValues(t *testing.T) {
	cfg := &Config{TownsSource: "file.csv", Port: 9000}
	require.NoError(t, cfg.ApplyEnv(envMap(nil)))
	assert.Equal(t, "file.csv", cfg.TownsSource)
	assert.Equal(t, 9000, cfg.Port)
}

func TestApplyEnv_BadInteger(t *testing.T) {
	cfg := &Config{}
	err := cfg.ApplyEnv(envMap(map[string]string{"PORT": "eighty"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestValidate_MissingRequiredSource(t *testing.T) {
	cfg := &Config{RosterSource: "roster.csv"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TownsSource")
}

func TestValidate_NegativeValues(t *testing.T) {
	base := Defaults()

	cfg := base
	cfg.ReloadInterval = Duration(-time.Second)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reload_interval")

	cfg = base
	cfg.RateLimitPerMin = -5
	assert.Error(t, cfg.Validate())
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := Defaults()
	cfg.NominatimEmail = "ops@example.org"
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		TownsSource: "custom_towns.csv",
		Port:        7000,
	}

	merged := partial.MergeWithDefaults(Defaults())

	assert.Equal(t, "custom_towns.csv", merged.TownsSource)
	assert.Equal(t, 7000, merged.Port)

	assert.Equal(t, DefaultRosterSource, merged.RosterSource)
	assert.Equal(t, DefaultRateLimitPerMin, merged.RateLimitPerMin)
	assert.Equal(t, Duration(DefaultReloadInterval), merged.ReloadInterval)
	assert.Equal(t, []string{"*"}, merged.AllowedOrigins)
	assert.Equal(t, DefaultGitCommit, merged.GitCommit)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{TownsSource: "t.csv"}
	merged := cfg.MergeWithDefaults(Config{})
	assert.Equal(t, "t.csv", merged.TownsSource)
	assert.Empty(t, merged.RosterSource)
}

func TestResolve_FileThenEnvThenDefaults(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"towns_source": "file_towns.csv", "port": 6000}`), 0644))

	cfg, err := Resolve(tmpFile, envMap(map[string]string{"PORT": "6001"}))
	require.NoError(t, err)

	assert.Equal(t, "file_towns.csv", cfg.TownsSource)
	assert.Equal(t, 6001, cfg.Port)
	assert.Equal(t, DefaultRosterSource, cfg.RosterSource)
}

func TestResolve_NoFile(t *testing.T) {
	cfg, err := Resolve("", envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestNormalizedTrackedBills(t *testing.T) {
	cfg := Config{TrackedBills: []string{"hb 1", "HB1", "SB-96", " "}}
	assert.Equal(t, []string{"HB1", "SB96"}, cfg.NormalizedTrackedBills())
}

func TestNominatimFallback(t *testing.T) {
	cfg, err := Resolve("", envMap(nil))
	require.NoError(t, err)
	assert.True(t, cfg.UseNominatim(), "fallback is on unless disabled")

	cfg, err = Resolve("", envMap(map[string]string{"NOMINATIM_FALLBACK": "0"}))
	require.NoError(t, err)
	assert.False(t, cfg.UseNominatim())

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"nominatim_fallback": false}`), 0644))
	cfg, err = Resolve(tmpFile, envMap(nil))
	require.NoError(t, err)
	assert.False(t, cfg.UseNominatim())

	cfg, err = Resolve(tmpFile, envMap(map[string]string{"NOMINATIM_FALLBACK": "yes"}))
	require.NoError(t, err)
	assert.True(t, cfg.UseNominatim())
}
