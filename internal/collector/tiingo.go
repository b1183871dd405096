package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"ReturnRanker/internal/calculator"
	"ReturnRanker/internal/logging"
	"ReturnRanker/internal/model"
)

// DefaultTiingoBaseURL is the public Tiingo REST endpoint.
const DefaultTiingoBaseURL = "https://api.tiingo.com"

// TiingoFetcher implements Fetcher using the Tiingo end-of-day prices API.
type TiingoFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	limiter *rate.Limiter
	logger  *logging.Logger
}

// NewTiingoFetcher creates a fetcher authenticated with apiKey.
func NewTiingoFetcher(apiKey string, opts ...Option) *TiingoFetcher {
	o := buildOptions(DefaultTiingoBaseURL, opts)
	return &TiingoFetcher{
		BaseURL: o.baseURL,
		APIKey:  apiKey,
		Client:  o.httpClient(),
		limiter: o.limiter(),
		logger:  o.logger,
	}
}

func (f *TiingoFetcher) Name() string { return "tiingo" }

// tiingoBar is the JSON shape of one element of the prices response.
type tiingoBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

func (f *TiingoFetcher) FetchCandles(ctx context.Context, symbol string, from, to time.Time) ([]model.Candle, error) {
	if err := waitLimiter(ctx, f.limiter); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("startDate", from.Format("2006-01-02"))
	params.Set("endDate", to.Format("2006-01-02"))
	endpoint := fmt.Sprintf("%s/tiingo/daily/%s/prices?%s", f.BaseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ProviderError{Provider: f.Name(), Symbol: symbol, Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Token "+f.APIKey)
	}

	f.logger.Debug().Str("symbol", symbol).Str("from", params.Get("startDate")).Str("to", params.Get("endDate")).Msg("tiingo request")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, transportError(ctx, f.Name(), symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &ProviderError{
			Provider:   f.Name(),
			Symbol:     symbol,
			Kind:       kindForStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("body: %s", string(body)),
		}
	}

	var bars []tiingoBar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ProviderError{Provider: f.Name(), Symbol: symbol, Kind: KindMalformed, Err: fmt.Errorf("decode bars: %w", err)}
	}

	candles := make([]model.Candle, 0, len(bars))
	for _, b := range bars {
		ts, err := time.Parse(time.RFC3339, b.Date)
		if err != nil {
			return nil, &ProviderError{Provider: f.Name(), Symbol: symbol, Kind: KindMalformed, Err: fmt.Errorf("parse date %q: %w", b.Date, err)}
		}
		candles = append(candles, model.Candle{
			Date:   calculator.Day(ts.UTC()),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Date.Before(candles[j].Date) })
	return candles, nil
}
