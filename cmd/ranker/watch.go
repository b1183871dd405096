package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"ReturnRanker/internal/runner"
)

// watchCmd holds the flags for the 'watch' subcommand.
type watchCmd struct {
	config     string
	trades     string
	runOnStart bool
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "re-rank trades on the configured cron schedule" }
func (*watchCmd) Usage() string {
	return `ranker watch [-config <path>] [-trades <file>] [-now]

  Runs an evaluation ending today every time schedule.cron fires, recording
  each run, until interrupted.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "config", "", "path to the YAML config (default $CONFIG_PATH or "+defaultConfigPath+")")
	f.StringVar(&c.trades, "trades", "", "trade list JSON file (default evaluation.trades_file)")
	f.BoolVar(&c.runOnStart, "now", false, "run one evaluation immediately")
}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	sched := runner.NewScheduler(ctx, a.runner, tradesFile)
	sched.OnResult = func(res *runner.RunResult) {
		for i, r := range res.Results {
			a.logger.Info().
				Str("run_id", res.RunID).
				Int("rank", i+1).
				Str("symbol", r.Symbol).
				Float64("annualized_return", r.AnnualizedReturn).
				Float64("total_return", r.TotalReturn).
				Msg("ranked")
		}
	}
	if err := sched.Register(a.cfg.Schedule.Cron); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	sched.Start()

	if c.runOnStart {
		a.logger.Info().Msg("running evaluation now")
		go sched.RunNow()
	}

	a.logger.Info().Str("schedule", a.cfg.Schedule.Cron).Msg("watching, press Ctrl+C to stop")
	<-ctx.Done()

	a.logger.Info().Msg("shutdown signal received, stopping")
	sched.Stop()
	return subcommands.ExitSuccess
}
