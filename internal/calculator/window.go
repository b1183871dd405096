package calculator

import (
	"sort"
	"time"

	"ReturnRanker/internal/model"
)

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / (24 * time.Hour))
}

// SelectWindow keeps the candles dated from the trade's purchase date through endDate,
// both inclusive, sorted oldest first. The input slice is not modified.
func SelectWindow(trade model.Trade, endDate time.Time, candles []model.Candle) []model.Candle {
	after := Day(trade.PurchaseDate).AddDate(0, 0, -1)
	before := Day(endDate).AddDate(0, 0, 1)

	window := make([]model.Candle, 0, len(candles))
	for _, c := range candles {
		d := Day(c.Date)
		if d.After(after) && d.Before(before) {
			window = append(window, c)
		}
	}
	sort.SliceStable(window, func(i, j int) bool {
		return Day(window[i].Date).Before(Day(window[j].Date))
	})
	return window
}
