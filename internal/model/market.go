package model

import "time"

// Candle is a single trading day's prices for one symbol.
type Candle struct {
	Date   time.Time // UTC midnight of the trading day
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Trade is one purchase read from the trade list.
type Trade struct {
	Symbol       string
	Quantity     float64
	TradeType    string
	PurchaseDate time.Time
}

// ClosingQuote is a symbol's closing price on the last trading day of a window.
type ClosingQuote struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"closingPrice"`
}
