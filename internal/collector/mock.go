package collector

import (
	"context"
	"sync/atomic"
	"time"

	"ReturnRanker/internal/calculator"
	"ReturnRanker/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols found in Errors fail, symbols found in Candles return those candles as is,
// and any other symbol gets generated weekday bars around Price (or none when Price is 0).
type MockFetcher struct {
	Price   float64
	Candles map[string][]model.Candle
	Errors  map[string]error

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns how many fetches were made.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

func (m *MockFetcher) FetchCandles(ctx context.Context, symbol string, from, to time.Time) ([]model.Candle, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	if candles, ok := m.Candles[symbol]; ok {
		return candles, nil
	}
	if m.Price == 0 {
		return []model.Candle{}, nil
	}
	return generateMockCandles(m.Price, from, to), nil
}

func generateMockCandles(basePrice float64, from, to time.Time) []model.Candle {
	var candles []model.Candle
	start, end := calculator.Day(from), calculator.Day(to)
	i := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i)*0.001)
		candles = append(candles, model.Candle{
			Date:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		i++
	}
	return candles
}
