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

// quotesCmd holds the flags for the 'quotes' subcommand.
type quotesCmd struct {
	config string
	trades string
	end    string

	out io.Writer
}

func (*quotesCmd) Name() string     { return "quotes" }
func (*quotesCmd) Synopsis() string { return "list trade symbols by closing price on an end date" }
func (*quotesCmd) Usage() string {
	return `ranker quotes [-config <path>] [-trades <file>] [-end <YYYY-MM-DD>]

  Prints each trade's closing price on the last trading day up to the end
  date, lowest first, as JSON.
`
}

func (c *quotesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "config", "", "path to the YAML config (default $CONFIG_PATH or "+defaultConfigPath+")")
	f.StringVar(&c.trades, "trades", "", "trade list JSON file (default evaluation.trades_file)")
	f.StringVar(&c.end, "end", time.Now().Format("2006-01-02"), "quote date")
}

func (c *quotesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	quotes, err := a.runner.Quotes(ctx, tradesFile, calculator.Day(endDate))
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
	if err := enc.Encode(quotes); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing quotes: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
