// Package portfolio ranks a list of trades by annualized return.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"ReturnRanker/internal/calculator"
	"ReturnRanker/internal/collector"
	"ReturnRanker/internal/model"
)

// DefaultConcurrency bounds parallel provider requests when no limit is configured.
const DefaultConcurrency = 4

// Evaluator fetches price history for each trade and computes its returns.
type Evaluator struct {
	fetcher     collector.Fetcher
	concurrency int
	observer    Observer
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithConcurrency sets how many trades are evaluated at once
func WithConcurrency(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithObserver sets the receiver of skip and edge case events
func WithObserver(o Observer) Option {
	return func(e *Evaluator) {
		if o != nil {
			e.observer = o
		}
	}
}

// NewEvaluator creates an Evaluator backed by fetcher.
func NewEvaluator(fetcher collector.Fetcher, opts ...Option) *Evaluator {
	e := &Evaluator{
		fetcher:     fetcher,
		concurrency: DefaultConcurrency,
		observer:    nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns one result per trade that has price data between its purchase date
// and endDate, sorted best annualized return first with NaN results last.
//
// Trades whose fetch fails with a recoverable provider error, or whose window is empty,
// are left out and reported to the observer. A fatal provider error or a cancelled
// context aborts the whole evaluation and no results are returned.
func (e *Evaluator) Evaluate(ctx context.Context, trades []model.Trade, endDate time.Time) ([]model.AnnualizedReturn, error) {
	results, err := forEachTrade(ctx, e.concurrency, trades, func(ctx context.Context, trade model.Trade) (*model.AnnualizedReturn, error) {
		return e.evaluateTrade(ctx, trade, endDate)
	})
	if err != nil {
		return nil, err
	}
	SortByAnnualizedReturn(results)
	return results, nil
}

// RankByClose returns each trade's symbol with its closing price on the last trading day
// between the purchase date and endDate, cheapest first. Skips and aborts follow Evaluate.
func (e *Evaluator) RankByClose(ctx context.Context, trades []model.Trade, endDate time.Time) ([]model.ClosingQuote, error) {
	quotes, err := forEachTrade(ctx, e.concurrency, trades, func(ctx context.Context, trade model.Trade) (*model.ClosingQuote, error) {
		window, err := e.fetchWindow(ctx, trade, endDate)
		if err != nil || window == nil {
			return nil, err
		}
		last := window[len(window)-1]
		return &model.ClosingQuote{Symbol: trade.Symbol, Date: last.Date, Close: last.Close}, nil
	})
	if err != nil {
		return nil, err
	}
	SortByClose(quotes)
	return quotes, nil
}

// forEachTrade runs fn for every trade on at most limit goroutines and returns the
// non-nil results in input order. The first error cancels the remaining work.
func forEachTrade[T any](ctx context.Context, limit int, trades []model.Trade, fn func(context.Context, model.Trade) (*T, error)) ([]T, error) {
	slots := make([]*T, len(trades))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, trade := range trades {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := fn(gctx, trade)
			if err != nil {
				return err
			}
			slots[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(trades))
	for _, res := range slots {
		if res != nil {
			out = append(out, *res)
		}
	}
	return out, nil
}

// fetchWindow returns the trade's candles inside its holding window. A nil window with a
// nil error means the trade was skipped and the observer has been told why.
func (e *Evaluator) fetchWindow(ctx context.Context, trade model.Trade, endDate time.Time) ([]model.Candle, error) {
	candles, err := e.fetcher.FetchCandles(ctx, trade.Symbol, trade.PurchaseDate, endDate)
	if err != nil {
		var pe *collector.ProviderError
		if errors.As(err, &pe) && !pe.Fatal() {
			e.observer.TradeSkipped(model.SkipEvent{
				Symbol:       trade.Symbol,
				PurchaseDate: trade.PurchaseDate,
				Reason:       model.SkipProviderError,
				Kind:         string(pe.Kind),
				Err:          err,
			})
			return nil, nil
		}
		return nil, fmt.Errorf("fetch %s: %w", trade.Symbol, err)
	}

	window := calculator.SelectWindow(trade, endDate, candles)
	if len(window) == 0 {
		e.observer.TradeSkipped(model.SkipEvent{
			Symbol:       trade.Symbol,
			PurchaseDate: trade.PurchaseDate,
			Reason:       model.SkipEmptyWindow,
		})
		return nil, nil
	}
	return window, nil
}

// evaluateTrade returns nil without error when the trade is skipped.
func (e *Evaluator) evaluateTrade(ctx context.Context, trade model.Trade, endDate time.Time) (*model.AnnualizedReturn, error) {
	window, err := e.fetchWindow(ctx, trade, endDate)
	if err != nil || window == nil {
		return nil, err
	}

	first, last := window[0], window[len(window)-1]
	if reason, undefined := calculator.EdgeCase(trade.PurchaseDate, last.Date, first.Open); undefined {
		e.observer.EdgeCaseHit(model.EdgeCaseEvent{Symbol: trade.Symbol, Reason: reason})
	}
	res := calculator.CalculateAnnualizedReturn(trade.Symbol, trade.PurchaseDate, last.Date, first.Open, last.Close)
	return &res, nil
}

// SortByAnnualizedReturn orders results best first. NaN ranks below every number and
// equal values keep their relative order.
func SortByAnnualizedReturn(results []model.AnnualizedReturn) {
	sort.SliceStable(results, func(i, j int) bool {
		return ranksBefore(results[i].AnnualizedReturn, results[j].AnnualizedReturn)
	})
}

func ranksBefore(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}

// SortByClose orders quotes by closing price, lowest first. Equal prices keep their
// relative order.
func SortByClose(quotes []model.ClosingQuote) {
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Close < quotes[j].Close
	})
}
