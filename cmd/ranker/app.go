package main

import (
	"fmt"
	"os"

	"ReturnRanker/internal/collector"
	"ReturnRanker/internal/config"
	"ReturnRanker/internal/logging"
	"ReturnRanker/internal/recorder"
	"ReturnRanker/internal/runner"
	"ReturnRanker/internal/trades"
)

const defaultConfigPath = "configs/config.yaml"

func configPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return defaultConfigPath
}

// app is everything a command needs for evaluation runs.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	runner   *runner.Runner
	recorder recorder.Recorder
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(configPath(cfgPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	logger := logging.NewLogger(cfg.Logging.Level)

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("provider", fetcher.Name()).Msg("data source selected")

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		runner:   runner.NewRunner(trades.NewFileSource(), fetcher, rec, logger, cfg.Evaluation.Concurrency),
		recorder: rec,
	}, nil
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		a.logger.Error().Err(err).Msg("close recorder")
	}
}

func newFetcher(cfg *config.Config, logger *logging.Logger) (collector.Fetcher, error) {
	opts := []collector.Option{
		collector.WithBaseURL(cfg.Provider.BaseURL),
		collector.WithProxy(cfg.Proxy),
		collector.WithTimeout(cfg.GetTimeout()),
		collector.WithRateLimit(cfg.Provider.RateLimit),
		collector.WithLogger(logger),
	}
	switch cfg.Provider.Name {
	case "tiingo":
		return collector.NewTiingoFetcher(cfg.Provider.APIKey, opts...), nil
	case "yahoo":
		return collector.NewYahooFetcher(opts...), nil
	case "mock":
		return &collector.MockFetcher{Price: 100}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
}
