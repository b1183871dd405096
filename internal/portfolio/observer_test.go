package portfolio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ReturnRanker/internal/logging"
	"ReturnRanker/internal/model"
)

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(logging.NewLoggerWithOutput("debug", &buf))

	obs.TradeSkipped(model.SkipEvent{
		Symbol:       "GOOG",
		PurchaseDate: date("2020-01-03"),
		Reason:       model.SkipProviderError,
		Kind:         "not_found",
		Err:          errors.New("ticker not found"),
	})
	obs.EdgeCaseHit(model.EdgeCaseEvent{Symbol: "ONE", Reason: model.EdgeZeroDuration})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"warn"`)
	assert.Contains(t, lines[0], `"symbol":"GOOG"`)
	assert.Contains(t, lines[0], `"kind":"not_found"`)
	assert.Contains(t, lines[0], `"error":"ticker not found"`)
	assert.Contains(t, lines[1], `"reason":"zero_duration"`)
}

func TestObservers_FanOut(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	obs := Observers{a, b}

	obs.TradeSkipped(model.SkipEvent{Symbol: "X"})
	obs.EdgeCaseHit(model.EdgeCaseEvent{Symbol: "Y"})

	assert.Len(t, a.skips, 1)
	assert.Len(t, b.skips, 1)
	assert.Len(t, a.edges, 1)
	assert.Len(t, b.edges, 1)
}
