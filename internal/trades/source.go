// Package trades loads the list of purchases to evaluate.
package trades

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"ReturnRanker/internal/model"
)

// Source supplies the ordered list of trades for a run.
type Source interface {
	Load(ctx context.Context, identifier string) ([]model.Trade, error)
}

// ErrorKind classifies a trade list failure.
type ErrorKind string

const (
	KindNotFound  ErrorKind = "not_found"
	KindMalformed ErrorKind = "malformed"
)

// SourceError means the trade list could not be read. It is fatal to a run.
type SourceError struct {
	Kind       ErrorKind
	Identifier string
	Err        error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("trade source %s: %s: %v", e.Identifier, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// tradeRecord is the JSON shape of one trade in the file.
type tradeRecord struct {
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	TradeType    string  `json:"tradeType"`
	PurchaseDate string  `json:"purchaseDate"`
}

// FileSource reads trades from JSON files on disk. Identifiers are file paths.
type FileSource struct{}

// NewFileSource creates a FileSource.
func NewFileSource() *FileSource { return &FileSource{} }

func (s *FileSource) Load(ctx context.Context, identifier string) ([]model.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(identifier)
	if err != nil {
		kind := KindMalformed
		if errors.Is(err, fs.ErrNotExist) {
			kind = KindNotFound
		}
		return nil, &SourceError{Kind: kind, Identifier: identifier, Err: err}
	}
	return Parse(identifier, data)
}

// Parse decodes and validates a JSON trade list.
func Parse(identifier string, data []byte) ([]model.Trade, error) {
	var records []tradeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &SourceError{Kind: KindMalformed, Identifier: identifier, Err: fmt.Errorf("decode trades: %w", err)}
	}

	out := make([]model.Trade, 0, len(records))
	for i, r := range records {
		symbol := strings.TrimSpace(r.Symbol)
		if symbol == "" {
			return nil, &SourceError{Kind: KindMalformed, Identifier: identifier, Err: fmt.Errorf("trade %d: empty symbol", i)}
		}
		purchased, err := time.Parse("2006-01-02", r.PurchaseDate)
		if err != nil {
			return nil, &SourceError{Kind: KindMalformed, Identifier: identifier, Err: fmt.Errorf("trade %d (%s): purchase date: %w", i, symbol, err)}
		}
		out = append(out, model.Trade{
			Symbol:       symbol,
			Quantity:     r.Quantity,
			TradeType:    r.TradeType,
			PurchaseDate: purchased,
		})
	}
	return out, nil
}
