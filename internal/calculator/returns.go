package calculator

import (
	"math"
	"time"

	"ReturnRanker/internal/model"
)

// DaysPerYear is the mean Gregorian year length.
const DaysPerYear = 365.2425

// EdgeCase reports whether the inputs make the returns undefined, and why.
func EdgeCase(purchaseDate, evaluationDate time.Time, buyPrice float64) (model.EdgeCaseReason, bool) {
	if DaysBetween(purchaseDate, evaluationDate) == 0 {
		return model.EdgeZeroDuration, true
	}
	if buyPrice == 0 {
		return model.EdgeZeroBuyPrice, true
	}
	return "", false
}

// CalculateAnnualizedReturn computes the total return of buying at buyPrice and selling at
// sellPrice, and the compound annual rate over the calendar days between the two dates.
// A zero-day holding period or a zero buy price yields NaN for both returns.
func CalculateAnnualizedReturn(symbol string, purchaseDate, evaluationDate time.Time, buyPrice, sellPrice float64) model.AnnualizedReturn {
	if _, undefined := EdgeCase(purchaseDate, evaluationDate, buyPrice); undefined {
		return model.AnnualizedReturn{
			Symbol:           symbol,
			AnnualizedReturn: math.NaN(),
			TotalReturn:      math.NaN(),
		}
	}

	total := (sellPrice - buyPrice) / buyPrice
	years := float64(DaysBetween(purchaseDate, evaluationDate)) / DaysPerYear
	return model.AnnualizedReturn{
		Symbol:           symbol,
		AnnualizedReturn: math.Pow(1+total, 1/years) - 1,
		TotalReturn:      total,
	}
}
