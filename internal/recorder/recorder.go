package recorder

import "ReturnRanker/internal/model"

// Recorder keeps an audit trail of evaluation runs for later analysis.
type Recorder interface {
	RecordRun(summary *model.RunSummary) error
	RecordSkip(evt *model.SkipEvent) error
	RecordEdgeCase(evt *model.EdgeCaseEvent) error
	Close() error
}
