// internal/common/errors/handler.go
package errors

import (
	"sort"
	"sync"
	"time"
)

// BatchReporter accumulates per-example failures during a batch run and
// produces the end-of-run summary. Per-example errors are never silently
// dropped; fatal errors should abort the run before reaching the reporter.
type BatchReporter struct {
	logger Logger

	mu       sync.Mutex
	failures []FailureRecord
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// FailureRecord is one skipped example.
type FailureRecord struct {
	Index     int       `json:"index"`
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary aggregates a batch's failures by code.
type Summary struct {
	Total  int               `json:"total"`
	ByCode map[ErrorCode]int `json:"byCode"`
}

func NewBatchReporter(logger Logger) *BatchReporter {
	return &BatchReporter{logger: logger}
}

// Record normalizes err and stores it against the example index.
func (r *BatchReporter) Record(index int, err error) {
	stdErr := r.normalizeError(err)

	r.mu.Lock()
	r.failures = append(r.failures, FailureRecord{
		Index:     index,
		Code:      stdErr.Code,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Timestamp: stdErr.Timestamp,
	})
	r.mu.Unlock()

	r.logger.Warn("example skipped", map[string]interface{}{
		"index":         index,
		"errorCode":     string(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
		"details":       stdErr.Details,
	})
}

// normalizeError ensures we always have a StandardError.
func (r *BatchReporter) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Failures returns the recorded failures ordered by example index.
func (r *BatchReporter) Failures() []FailureRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]FailureRecord, len(r.failures))
	copy(out, r.failures)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Summarize aggregates the recorded failures.
func (r *BatchReporter) Summarize() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Summary{Total: len(r.failures), ByCode: make(map[ErrorCode]int)}
	for _, f := range r.failures {
		s.ByCode[f.Code]++
	}
	return s
}

// LogSummary emits the end-of-batch failure summary.
func (r *BatchReporter) LogSummary() {
	s := r.Summarize()
	if s.Total == 0 {
		return
	}
	byCode := make(map[string]interface{}, len(s.ByCode))
	for code, n := range s.ByCode {
		byCode[string(code)] = n
	}
	r.logger.Error("batch finished with skipped examples", map[string]interface{}{
		"skipped": s.Total,
		"byCode":  byCode,
	})
}
