package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReturnRanker/internal/collector"
	"ReturnRanker/internal/config"
	"ReturnRanker/internal/logging"
	"ReturnRanker/internal/model"
)

func mockEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PROVIDER", "mock")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("LOG_LEVEL", "error")
}

func writeTrades(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "trades.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestRankCmd_PrintsRankedJSON(t *testing.T) {
	mockEnv(t)
	tradesFile := writeTrades(t, `[
		{"symbol": "AAPL", "quantity": 1, "tradeType": "BUY", "purchaseDate": "2024-01-02"},
		{"symbol": "MSFT", "quantity": 1, "tradeType": "BUY", "purchaseDate": "2024-01-16"}
	]`)

	var out bytes.Buffer
	cmd := &rankCmd{
		config: filepath.Join(t.TempDir(), "missing.yaml"),
		trades: tradesFile,
		end:    "2024-01-31",
		out:    &out,
	}
	status := cmd.Execute(context.Background(), flag.NewFlagSet("rank", flag.ContinueOnError))
	require.Equal(t, subcommands.ExitSuccess, status)

	var got []model.AnnualizedReturn
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)
	for _, r := range got {
		assert.False(t, r.IsNaN(), r.Symbol)
		assert.Greater(t, r.TotalReturn, 0.0)
	}
	assert.GreaterOrEqual(t, got[0].AnnualizedReturn, got[1].AnnualizedReturn)
}

func TestQuotesCmd_PrintsCheapestFirst(t *testing.T) {
	mockEnv(t)
	tradesFile := writeTrades(t, `[
		{"symbol": "LATE", "quantity": 1, "tradeType": "BUY", "purchaseDate": "2024-01-22"},
		{"symbol": "EARLY", "quantity": 1, "tradeType": "BUY", "purchaseDate": "2024-01-02"}
	]`)

	var out bytes.Buffer
	cmd := &quotesCmd{
		config: filepath.Join(t.TempDir(), "missing.yaml"),
		trades: tradesFile,
		end:    "2024-01-31",
		out:    &out,
	}
	status := cmd.Execute(context.Background(), flag.NewFlagSet("quotes", flag.ContinueOnError))
	require.Equal(t, subcommands.ExitSuccess, status)

	var got []model.ClosingQuote
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)
	// generated mock prices rise with every bar since the purchase date
	assert.Equal(t, "LATE", got[0].Symbol)
	assert.Equal(t, "EARLY", got[1].Symbol)
	assert.Less(t, got[0].Close, got[1].Close)
}

func TestRankCmd_BadEndDate(t *testing.T) {
	mockEnv(t)
	cmd := &rankCmd{end: "31/01/2024", out: &bytes.Buffer{}}
	status := cmd.Execute(context.Background(), flag.NewFlagSet("rank", flag.ContinueOnError))
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestRankCmd_MissingTradesFile(t *testing.T) {
	mockEnv(t)
	var out bytes.Buffer
	cmd := &rankCmd{
		config: filepath.Join(t.TempDir(), "missing.yaml"),
		trades: filepath.Join(t.TempDir(), "nope.json"),
		end:    "2024-01-31",
		out:    &out,
	}
	status := cmd.Execute(context.Background(), flag.NewFlagSet("rank", flag.ContinueOnError))
	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Empty(t, out.String())
}

func TestNewFetcher(t *testing.T) {
	logger := logging.NewSilentLogger()
	cases := []struct {
		name     string
		provider string
		want     string
		wantErr  bool
	}{
		{"tiingo", "tiingo", "tiingo", false},
		{"yahoo", "yahoo", "yahoo", false},
		{"mock", "mock", "mock", false},
		{"unknown", "bloomberg", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Provider.Name = tc.provider
			cfg.Provider.APIKey = "k"
			cfg.Provider.RateLimit = 5
			cfg.Provider.Timeout = "5s"

			f, err := newFetcher(cfg, logger)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, f.Name())
			if tc.provider == "mock" {
				assert.IsType(t, &collector.MockFetcher{}, f)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, defaultConfigPath, configPath(""))
	assert.Equal(t, "x.yaml", configPath("x.yaml"))

	t.Setenv("CONFIG_PATH", "env.yaml")
	assert.Equal(t, "env.yaml", configPath(""))
}
