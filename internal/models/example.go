// internal/models/example.go
package models

import "time"

// Pair is the unit handed to downstream dataset writers: a surface utterance
// together with its canonical logical form. The two halves are never emitted
// separately.
type Pair struct {
	Utterance   string `json:"utterance"`
	LogicalForm string `json:"logicalForm"`
}

// Example is one generated training example.
type Example struct {
	ID   string `json:"id"`
	Seed int64  `json:"seed"`
	Pair
}

// Failure records one skipped example in a batch.
type Failure struct {
	Index   int    `json:"index"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchRequest describes one batch generation run.
type BatchRequest struct {
	StartCategory string `json:"startCategory"`
	Count         int    `json:"count"`
	Seed          int64  `json:"seed"`
	MaxDepth      int    `json:"maxDepth"`
	MaxRetries    int    `json:"maxRetries"`
	Unique        bool   `json:"unique"`
	Policy        string `json:"policy"`
	Workers       int    `json:"workers"`
}

// BatchResult summarizes a finished batch. Examples are ordered by seed so a
// batch is reproducible regardless of worker count.
type BatchResult struct {
	Examples []Example     `json:"examples"`
	Failures []Failure     `json:"failures"`
	Duration time.Duration `json:"duration"`
}
