package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTiingoFetcher_FetchCandles(t *testing.T) {
	var gotPath, gotQuery, gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`[
			{"date":"2020-01-03T00:00:00.000Z","open":101,"high":103,"low":100,"close":102,"volume":900},
			{"date":"2020-01-02T00:00:00.000Z","open":100,"high":102,"low":99,"close":101,"volume":1000}
		]`))
	}))
	defer srv.Close()

	f := NewTiingoFetcher("secret", WithBaseURL(srv.URL))
	candles, err := f.FetchCandles(context.Background(), "AAPL", day("2020-01-02"), day("2020-01-10"))
	require.NoError(t, err)

	assert.Equal(t, "/tiingo/daily/AAPL/prices", gotPath)
	assert.Equal(t, "endDate=2020-01-10&startDate=2020-01-02", gotQuery)
	assert.Equal(t, "Token secret", gotAuth)
	assert.Equal(t, "application/json", gotAccept)

	require.Len(t, candles, 2)
	assert.Equal(t, day("2020-01-02"), candles[0].Date)
	assert.Equal(t, 100.0, candles[0].Open)
	assert.Equal(t, 102.0, candles[1].Close)
	assert.Equal(t, 900.0, candles[1].Volume)
}

func TestTiingoFetcher_StatusKinds(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
		fatal  bool
	}{
		{http.StatusNotFound, KindNotFound, false},
		{http.StatusUnauthorized, KindUnauthorized, true},
		{http.StatusForbidden, KindUnauthorized, true},
		{http.StatusInternalServerError, KindNetwork, false},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"detail":"nope"}`))
		}))

		f := NewTiingoFetcher("k", WithBaseURL(srv.URL))
		_, err := f.FetchCandles(context.Background(), "ZZZ", day("2020-01-02"), day("2020-01-10"))
		srv.Close()

		var pe *ProviderError
		require.True(t, errors.As(err, &pe), "status %d", tt.status)
		assert.Equal(t, tt.kind, pe.Kind)
		assert.Equal(t, tt.status, pe.StatusCode)
		assert.Equal(t, tt.fatal, pe.Fatal())
		assert.Equal(t, "ZZZ", pe.Symbol)
	}
}

func TestTiingoFetcher_Malformed(t *testing.T) {
	for _, body := range []string{`{"detail":"Error"}`, `[{"date":"yesterday","open":1,"close":1}]`, `[`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		f := NewTiingoFetcher("k", WithBaseURL(srv.URL))
		_, err := f.FetchCandles(context.Background(), "BAD", day("2020-01-02"), day("2020-01-10"))
		srv.Close()

		var pe *ProviderError
		require.True(t, errors.As(err, &pe), body)
		assert.Equal(t, KindMalformed, pe.Kind, body)
		assert.False(t, pe.Fatal())
	}
}

func TestTiingoFetcher_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := NewTiingoFetcher("k", WithBaseURL(url), WithTimeout(time.Second))
	_, err := f.FetchCandles(context.Background(), "NET", day("2020-01-02"), day("2020-01-10"))

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindNetwork, pe.Kind)
}

func TestTiingoFetcher_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewTiingoFetcher("k", WithBaseURL(srv.URL))
	_, err := f.FetchCandles(ctx, "CTX", day("2020-01-02"), day("2020-01-10"))
	assert.ErrorIs(t, err, context.Canceled)

	var pe *ProviderError
	assert.False(t, errors.As(err, &pe))
}

func TestTiingoFetcher_RateLimitDeadlineIsNotProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"date":"2020-01-02T00:00:00Z","open":100,"high":101,"low":99,"close":100,"volume":1}]`))
	}))
	defer srv.Close()

	f := NewTiingoFetcher("k", WithBaseURL(srv.URL), WithRateLimit(1))
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := f.FetchCandles(ctx, "AAPL", day("2020-01-02"), day("2020-01-10"))
	require.NoError(t, err)

	// the burst token is spent and the next one arrives after the deadline
	_, err = f.FetchCandles(ctx, "MSFT", day("2020-01-02"), day("2020-01-10"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	var pe *ProviderError
	assert.False(t, errors.As(err, &pe), "limiter failure reported as provider error: %v", err)
}

func TestYahooFetcher_CancelledBeforeLimiter(t *testing.T) {
	f := NewYahooFetcher(WithBaseURL("http://127.0.0.1:0"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.FetchCandles(ctx, "AAPL", day("2020-01-02"), day("2020-01-10"))
	assert.ErrorIs(t, err, context.Canceled)
	var pe *ProviderError
	assert.False(t, errors.As(err, &pe))
}
