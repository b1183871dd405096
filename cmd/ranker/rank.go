package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"ReturnRanker/internal/calculator"
)

// rankCmd holds the flags for the 'rank' subcommand.
type rankCmd struct {
	config string
	trades string
	end    string

	out io.Writer
}

func (*rankCmd) Name() string     { return "rank" }
func (*rankCmd) Synopsis() string { return "rank trades by annualized return as of an end date" }
func (*rankCmd) Usage() string {
	return `ranker rank [-config <path>] [-trades <file>] [-end <YYYY-MM-DD>]

  Fetches daily prices for every trade in the trade file and prints the
  annualized returns, best first, as JSON.
`
}

func (c *rankCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "config", "", "path to the YAML config (default $CONFIG_PATH or "+defaultConfigPath+")")
	f.StringVar(&c.trades, "trades", "", "trade list JSON file (default evaluation.trades_file)")
	f.StringVar(&c.end, "end", time.Now().Format("2006-01-02"), "evaluation end date")
}

func (c *rankCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	endDate, err := time.Parse("2006-01-02", c.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := newApp(c.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	tradesFile := c.trades
	if tradesFile == "" {
		tradesFile = a.cfg.Evaluation.TradesFile
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := a.runner.RunOnce(ctx, tradesFile, calculator.Day(endDate))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res.Results); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
