package portfolio

import (
	"ReturnRanker/internal/logging"
	"ReturnRanker/internal/model"
)

// Observer receives the per-trade outcomes that do not fail an evaluation.
// Methods are called from worker goroutines and must be safe for concurrent use.
type Observer interface {
	TradeSkipped(evt model.SkipEvent)
	EdgeCaseHit(evt model.EdgeCaseEvent)
}

type nopObserver struct{}

func (nopObserver) TradeSkipped(model.SkipEvent)     {}
func (nopObserver) EdgeCaseHit(model.EdgeCaseEvent) {}

// LogObserver writes events to a logger.
type LogObserver struct {
	Logger *logging.Logger
}

// NewLogObserver creates a LogObserver.
func NewLogObserver(logger *logging.Logger) *LogObserver {
	return &LogObserver{Logger: logger}
}

func (o *LogObserver) TradeSkipped(evt model.SkipEvent) {
	ev := o.Logger.Warn().
		Str("symbol", evt.Symbol).
		Str("purchase_date", evt.PurchaseDate.Format("2006-01-02")).
		Str("reason", string(evt.Reason))
	if evt.Kind != "" {
		ev = ev.Str("kind", evt.Kind)
	}
	if evt.Err != nil {
		ev = ev.Err(evt.Err)
	}
	ev.Msg("trade skipped")
}

func (o *LogObserver) EdgeCaseHit(evt model.EdgeCaseEvent) {
	o.Logger.Info().
		Str("symbol", evt.Symbol).
		Str("reason", string(evt.Reason)).
		Msg("return undefined, reporting NaN")
}

// Observers fans events out to several observers in order.
type Observers []Observer

func (obs Observers) TradeSkipped(evt model.SkipEvent) {
	for _, o := range obs {
		o.TradeSkipped(evt)
	}
}

func (obs Observers) EdgeCaseHit(evt model.EdgeCaseEvent) {
	for _, o := range obs {
		o.EdgeCaseHit(evt)
	}
}
