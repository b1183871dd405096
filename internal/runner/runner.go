// Package runner wires a trade source, a price fetcher and a recorder into evaluation runs.
package runner

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"ReturnRanker/internal/collector"
	"ReturnRanker/internal/logging"
	"ReturnRanker/internal/model"
	"ReturnRanker/internal/portfolio"
	"ReturnRanker/internal/recorder"
	"ReturnRanker/internal/trades"
)

// Runner performs complete evaluation runs.
type Runner struct {
	Source      trades.Source
	Fetcher     collector.Fetcher
	Recorder    recorder.Recorder
	Logger      *logging.Logger
	Concurrency int

	now func() time.Time
}

// RunResult is the outcome of one run.
type RunResult struct {
	RunID     string
	Results   []model.AnnualizedReturn
	Skipped   int
	EdgeCases int
}

// NewRunner creates a Runner. A nil recorder or logger disables that concern.
func NewRunner(source trades.Source, fetcher collector.Fetcher, rec recorder.Recorder, logger *logging.Logger, concurrency int) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = logging.NewSilentLogger()
	}
	return &Runner{
		Source:      source,
		Fetcher:     fetcher,
		Recorder:    rec,
		Logger:      logger,
		Concurrency: concurrency,
		now:         time.Now,
	}
}

// RunOnce loads the trades named by tradesID and ranks them as of endDate.
// Trade source failures and fatal evaluation errors abort the run.
func (r *Runner) RunOnce(ctx context.Context, tradesID string, endDate time.Time) (*RunResult, error) {
	runID := uuid.NewString()
	log := r.Logger.WithRun(runID)
	started := r.now()

	log.Info().
		Str("trades", tradesID).
		Str("end_date", endDate.Format("2006-01-02")).
		Str("provider", r.Fetcher.Name()).
		Msg("evaluation started")

	list, err := r.Source.Load(ctx, tradesID)
	if err != nil {
		log.Error().Err(err).Msg("load trades failed")
		return nil, fmt.Errorf("load trades: %w", err)
	}

	obs := &runObserver{runID: runID, recorder: r.Recorder, logger: log, log: portfolio.NewLogObserver(log)}
	evaluator := portfolio.NewEvaluator(r.Fetcher,
		portfolio.WithConcurrency(r.Concurrency),
		portfolio.WithObserver(obs),
	)
	results, err := evaluator.Evaluate(ctx, list, endDate)
	if err != nil {
		log.Error().Err(err).Msg("evaluation aborted")
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	res := &RunResult{
		RunID:     runID,
		Results:   results,
		Skipped:   int(obs.skipped.Load()),
		EdgeCases: int(obs.edgeCases.Load()),
	}
	if err := r.Recorder.RecordRun(&model.RunSummary{
		RunID:     runID,
		StartedAt: started,
		EndDate:   endDate,
		Trades:    len(list),
		Results:   results,
		Skipped:   res.Skipped,
	}); err != nil {
		log.Error().Err(err).Msg("record run")
	}

	log.Info().
		Int("trades", len(list)).
		Int("results", len(results)).
		Int("skipped", res.Skipped).
		Int("edge_cases", res.EdgeCases).
		Dur("elapsed", r.now().Sub(started)).
		Msg("evaluation finished")
	return res, nil
}

// Quotes loads the trades named by tradesID and lists their closing prices as of endDate,
// cheapest first. Skipped trades are logged but not recorded.
func (r *Runner) Quotes(ctx context.Context, tradesID string, endDate time.Time) ([]model.ClosingQuote, error) {
	log := r.Logger.WithRun(uuid.NewString())

	list, err := r.Source.Load(ctx, tradesID)
	if err != nil {
		log.Error().Err(err).Msg("load trades failed")
		return nil, fmt.Errorf("load trades: %w", err)
	}

	evaluator := portfolio.NewEvaluator(r.Fetcher,
		portfolio.WithConcurrency(r.Concurrency),
		portfolio.WithObserver(portfolio.NewLogObserver(log)),
	)
	quotes, err := evaluator.RankByClose(ctx, list, endDate)
	if err != nil {
		log.Error().Err(err).Msg("quotes aborted")
		return nil, fmt.Errorf("quotes: %w", err)
	}

	log.Info().
		Int("trades", len(list)).
		Int("quotes", len(quotes)).
		Str("end_date", endDate.Format("2006-01-02")).
		Msg("quotes ranked")
	return quotes, nil
}

// runObserver stamps events with the run ID, logs them and records them.
type runObserver struct {
	runID    string
	recorder recorder.Recorder
	logger   *logging.Logger
	log      *portfolio.LogObserver

	skipped   atomic.Int64
	edgeCases atomic.Int64
}

func (o *runObserver) TradeSkipped(evt model.SkipEvent) {
	evt.RunID = o.runID
	o.skipped.Add(1)
	o.log.TradeSkipped(evt)
	if err := o.recorder.RecordSkip(&evt); err != nil {
		o.logger.Error().Err(err).Str("symbol", evt.Symbol).Msg("record skip")
	}
}

func (o *runObserver) EdgeCaseHit(evt model.EdgeCaseEvent) {
	evt.RunID = o.runID
	o.edgeCases.Add(1)
	o.log.EdgeCaseHit(evt)
	if err := o.recorder.RecordEdgeCase(&evt); err != nil {
		o.logger.Error().Err(err).Str("symbol", evt.Symbol).Msg("record edge case")
	}
}
