// internal/pipeline/pipeline.go

// Package pipeline runs batch dataset generation: N self-contained
// generate+compose+serialize units over a shared immutable model.
package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"command-generator/internal/common/errors"
	"command-generator/internal/common/logger"
	"command-generator/internal/common/metrics"
	"command-generator/internal/common/observability"
	"command-generator/internal/generator"
	"command-generator/internal/models"
	"command-generator/internal/semantics"
	"command-generator/internal/serializer"
)

type Runner struct {
	gen    *generator.Generator
	ser    *serializer.Serializer
	logger logger.Logger
	obs    *observability.Observability
}

type Option func(*Runner)

// WithObservability attaches otel batch instrumentation.
func WithObservability(obs *observability.Observability) Option {
	return func(r *Runner) { r.obs = obs }
}

func NewRunner(gen *generator.Generator, ser *serializer.Serializer, log logger.Logger, opts ...Option) *Runner {
	r := &Runner{
		gen:    gen,
		ser:    ser,
		logger: log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run generates req.Count examples. Each example is an independent unit with
// its own derived seed (request seed + example index), so results do not
// depend on the worker count. Per-example failures are recorded and
// summarized, never dropped; fatal errors abort the batch. Cancellation is
// cooperative: workers stop picking up new units once ctx is done, and no
// partial example is ever published.
func (r *Runner) Run(ctx context.Context, req models.BatchRequest) (*models.BatchResult, error) {
	started := time.Now()

	workers := req.Workers
	if workers < 1 {
		workers = 1
	}

	log := r.logger.WithFields(map[string]interface{}{
		"startCategory": req.StartCategory,
		"count":         req.Count,
		"seed":          req.Seed,
		"workers":       workers,
	})
	log.Info("starting batch generation", nil)

	reporter := errors.NewBatchReporter(log)

	var (
		mu       sync.Mutex
		examples []models.Example
		seen     = make(map[string]bool)
	)

	indices := make(chan int)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(indices)
		for i := 0; i < req.Count; i++ {
			select {
			case indices <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			metrics.WorkersActive.WithLabelValues(req.StartCategory).Inc()
			defer metrics.WorkersActive.WithLabelValues(req.StartCategory).Dec()

			for idx := range indices {
				example, err := r.runUnit(gctx, req, idx)
				if err != nil {
					if errors.IsFatal(err) {
						return err
					}
					reporter.Record(idx, err)
					metrics.ExamplesFailed.WithLabelValues(req.StartCategory, string(errors.CodeOf(err))).Inc()
					r.recordExample(gctx, "failed")
					continue
				}

				mu.Lock()
				if req.Unique && seen[example.Utterance] {
					mu.Unlock()
					dupErr := errors.NewDuplicateUtteranceError(example.Utterance)
					reporter.Record(idx, dupErr)
					metrics.ExamplesFailed.WithLabelValues(req.StartCategory, string(errors.ErrCodeDuplicateUtterance)).Inc()
					r.recordExample(gctx, "duplicate")
					continue
				}
				seen[example.Utterance] = true
				examples = append(examples, example)
				mu.Unlock()

				metrics.ExamplesGenerated.WithLabelValues(req.StartCategory).Inc()
				r.recordExample(gctx, "generated")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.recordBatch(ctx, started, "failed")
		return nil, err
	}

	// Workers append out of order; seed order restores the request order.
	sort.Slice(examples, func(i, j int) bool { return examples[i].Seed < examples[j].Seed })

	reporter.LogSummary()

	result := &models.BatchResult{
		Examples: examples,
		Failures: toModelFailures(reporter.Failures()),
		Duration: time.Since(started),
	}

	log.Info("batch generation finished", map[string]interface{}{
		"generated": len(result.Examples),
		"skipped":   len(result.Failures),
		"duration":  result.Duration.String(),
	})
	r.recordBatch(ctx, started, "completed")

	return result, nil
}

// runUnit is one self-contained generate+compose+serialize pipeline.
func (r *Runner) runUnit(ctx context.Context, req models.BatchRequest, idx int) (models.Example, error) {
	unitStarted := time.Now()
	defer func() {
		metrics.ExampleDuration.WithLabelValues(req.StartCategory).Observe(time.Since(unitStarted).Seconds())
	}()

	seed := req.Seed + int64(idx)

	d, err := r.gen.Generate(ctx, req.StartCategory, seed, req.MaxDepth, req.MaxRetries)
	if err != nil {
		return models.Example{}, err
	}

	lf, err := semantics.Compose(d)
	if err != nil {
		return models.Example{}, err
	}

	return models.Example{
		ID:   uuid.NewString(),
		Seed: seed,
		Pair: r.ser.Render(d, lf),
	}, nil
}

func (r *Runner) recordExample(ctx context.Context, status string) {
	if r.obs != nil {
		r.obs.RecordExample(ctx, status)
	}
}

func (r *Runner) recordBatch(ctx context.Context, started time.Time, status string) {
	if r.obs != nil {
		r.obs.RecordBatchDuration(ctx, time.Since(started), status)
	}
}

func toModelFailures(records []errors.FailureRecord) []models.Failure {
	out := make([]models.Failure, 0, len(records))
	for _, rec := range records {
		out = append(out, models.Failure{
			Index:   rec.Index,
			Code:    string(rec.Code),
			Message: rec.Message,
		})
	}
	return out
}
