package collector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"ReturnRanker/internal/model"
)

// Fetcher defines the interface for fetching daily price history.
type Fetcher interface {
	// FetchCandles returns the daily candles of symbol between from and to, both inclusive.
	// Provider failures are returned as *ProviderError; context errors are returned as is.
	FetchCandles(ctx context.Context, symbol string, from, to time.Time) ([]model.Candle, error)
	Name() string
}

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	KindNetwork      ErrorKind = "network"
	KindMalformed    ErrorKind = "malformed"
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
)

// ProviderError is a failed fetch for one symbol.
type ProviderError struct {
	Provider   string
	Symbol     string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: %s (status %d): %v", e.Provider, e.Symbol, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Provider, e.Symbol, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Fatal reports whether the failure affects every symbol, so evaluation should stop.
func (e *ProviderError) Fatal() bool { return e.Kind == KindUnauthorized }

func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnauthorized
	default:
		return KindNetwork
	}
}

// transportError turns a failed request into a ProviderError, unless the caller's
// context ended, in which case the context error is returned unchanged.
func transportError(ctx context.Context, provider, symbol string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &ProviderError{Provider: provider, Symbol: symbol, Kind: KindNetwork, Err: err}
}

// waitLimiter blocks until limiter admits one request. Limiter failures come from the
// caller's context, either ended or with a deadline too close to wait for the next token,
// so they are returned as context errors and never as a ProviderError.
func waitLimiter(ctx context.Context, limiter *rate.Limiter) error {
	if err := limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("rate limit wait: %w", context.DeadlineExceeded)
	}
	return nil
}
