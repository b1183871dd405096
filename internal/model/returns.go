package model

import (
	"encoding/json"
	"math"
)

// AnnualizedReturn is the evaluation result for one trade.
// Both return fields may be NaN when the holding period is zero days or the buy price is zero.
type AnnualizedReturn struct {
	Symbol           string
	AnnualizedReturn float64
	TotalReturn      float64
}

type annualizedReturnJSON struct {
	Symbol           string   `json:"symbol"`
	AnnualizedReturn *float64 `json:"annualizedReturn"`
	TotalReturn      *float64 `json:"totalReturn"`
}

// MarshalJSON encodes NaN returns as null.
func (r AnnualizedReturn) MarshalJSON() ([]byte, error) {
	return json.Marshal(annualizedReturnJSON{
		Symbol:           r.Symbol,
		AnnualizedReturn: finite(r.AnnualizedReturn),
		TotalReturn:      finite(r.TotalReturn),
	})
}

// UnmarshalJSON decodes null returns as NaN.
func (r *AnnualizedReturn) UnmarshalJSON(data []byte) error {
	var raw annualizedReturnJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Symbol = raw.Symbol
	r.AnnualizedReturn = orNaN(raw.AnnualizedReturn)
	r.TotalReturn = orNaN(raw.TotalReturn)
	return nil
}

// IsNaN reports whether the result could not be computed.
func (r AnnualizedReturn) IsNaN() bool {
	return math.IsNaN(r.AnnualizedReturn)
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
