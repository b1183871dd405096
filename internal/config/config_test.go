package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp keeps Load's .env lookup away from the package directory.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"PROVIDER", "PROVIDER_BASE_URL", "TIINGO_API_KEY", "HTTPS_PROXY",
		"CONCURRENCY", "TRADES_FILE", "CRON_SCHEDULE", "SQLITE_PATH", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "tiingo", cfg.Provider.Name)
	assert.Equal(t, 5, cfg.Provider.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.GetTimeout())
	assert.Equal(t, 4, cfg.Evaluation.Concurrency)
	assert.Equal(t, "data/trades.json", cfg.Evaluation.TradesFile)
	assert.Equal(t, "0 0 22 * * 1-5", cfg.Schedule.Cron)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Database.SQLitePath)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider:
  name: yahoo
  timeout: 5s
  rate_limit: 2
evaluation:
  concurrency: 8
  trades_file: trades.json
database:
  sqlite_path: ranker.db
`), 0644))
	t.Setenv("CONCURRENCY", "3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "yahoo", cfg.Provider.Name)
	assert.Equal(t, 5*time.Second, cfg.GetTimeout())
	assert.Equal(t, 2, cfg.Provider.RateLimit)
	assert.Equal(t, 3, cfg.Evaluation.Concurrency)
	assert.Equal(t, "trades.json", cfg.Evaluation.TradesFile)
	assert.Equal(t, "ranker.db", cfg.Database.SQLitePath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)
	os.Unsetenv("TIINGO_API_KEY")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TIINGO_API_KEY=from-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("TIINGO_API_KEY") })

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Provider.APIKey)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_BadConcurrencyEnv(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)
	t.Setenv("CONCURRENCY", "four")

	_, err := Load("missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONCURRENCY")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"tiingo with key", func(c *Config) { c.Provider.APIKey = "k" }, true},
		{"tiingo without key", func(c *Config) {}, false},
		{"yahoo", func(c *Config) { c.Provider.Name = "yahoo" }, true},
		{"unknown provider", func(c *Config) { c.Provider.Name = "bloomberg" }, false},
		{"zero concurrency", func(c *Config) { c.Provider.Name = "mock"; c.Evaluation.Concurrency = 0 }, false},
		{"negative rate", func(c *Config) { c.Provider.Name = "mock"; c.Provider.RateLimit = -1 }, false},
	}
	for _, tt := range tests {
		cfg := &Config{}
		cfg.Provider.Name = "tiingo"
		cfg.Provider.RateLimit = 5
		cfg.Evaluation.Concurrency = 4
		tt.mutate(cfg)
		if tt.ok {
			assert.NoError(t, cfg.Validate(), tt.name)
		} else {
			assert.Error(t, cfg.Validate(), tt.name)
		}
	}
}
