package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Provider struct {
		Name      string `yaml:"name"` // tiingo, yahoo or mock
		BaseURL   string `yaml:"base_url"`
		APIKey    string `yaml:"api_key"`
		RateLimit int    `yaml:"rate_limit"`
		Timeout   string `yaml:"timeout"`
	} `yaml:"provider"`
	Evaluation struct {
		Concurrency int    `yaml:"concurrency"`
		TradesFile  string `yaml:"trades_file"`
	} `yaml:"evaluation"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then a .env file next to the working directory,
// then applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("PROVIDER"); v != "" {
		cfg.Provider.Name = v
	}
	if v := os.Getenv("PROVIDER_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("TIINGO_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse CONCURRENCY %q: %w", v, err)
		}
		cfg.Evaluation.Concurrency = n
	}
	if v := os.Getenv("TRADES_FILE"); v != "" {
		cfg.Evaluation.TradesFile = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Defaults
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = "tiingo"
	}
	if cfg.Provider.RateLimit == 0 {
		cfg.Provider.RateLimit = 5
	}
	if cfg.Provider.Timeout == "" {
		cfg.Provider.Timeout = "30s"
	}
	if cfg.Evaluation.Concurrency == 0 {
		cfg.Evaluation.Concurrency = 4
	}
	if cfg.Evaluation.TradesFile == "" {
		cfg.Evaluation.TradesFile = "data/trades.json"
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 0 22 * * 1-5"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}

// GetTimeout parses the provider timeout, falling back to 30 seconds.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Provider.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case "tiingo":
		if c.Provider.APIKey == "" {
			return fmt.Errorf("provider.api_key is required for tiingo")
		}
	case "yahoo", "mock":
	default:
		return fmt.Errorf("provider.name %q is not one of tiingo, yahoo, mock", c.Provider.Name)
	}
	if c.Provider.RateLimit <= 0 {
		return fmt.Errorf("provider.rate_limit must be positive")
	}
	if c.Evaluation.Concurrency <= 0 {
		return fmt.Errorf("evaluation.concurrency must be positive")
	}
	return nil
}
