// internal/generator/generator.go

// Package generator expands a grammar start category into a fully resolved
// derivation tree.
package generator

import (
	"context"
	stderrors "errors"
	"math/rand"

	"command-generator/internal/common/errors"
	"command-generator/internal/common/logger"
	"command-generator/internal/grammar"
	"command-generator/internal/knowledge"
)

// errDepthExceeded aborts one derivation attempt; the attempt is retried
// against the caller's budget and never surfaces past Generate.
var errDepthExceeded = stderrors.New("derivation depth exceeded")

type Generator struct {
	model  *grammar.Model
	kb     *knowledge.Base
	policy SelectionPolicy
	logger logger.Logger
}

type Option func(*Generator)

func WithPolicy(p SelectionPolicy) Option {
	return func(g *Generator) { g.policy = p }
}

func WithLogger(l logger.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// New builds a generator over an already validated model and knowledge base.
// Both are read-only; one Generator may serve concurrent Generate calls.
func New(model *grammar.Model, kb *knowledge.Base, opts ...Option) *Generator {
	g := &Generator{
		model:  model,
		kb:     kb,
		policy: RandomPolicy{},
		logger: logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate expands startCategory into a derivation tree. All randomness is
// drawn from one rand.Rand seeded here and owned by this call, so identical
// arguments against the same model/knowledge snapshot reproduce the same
// tree. An attempt that would exceed maxDepth is abandoned and retried, up to
// maxRetries extra attempts; the retries keep consuming the same stream so
// they explore different expansions.
func (g *Generator) Generate(ctx context.Context, startCategory string, seed int64, maxDepth, maxRetries int) (*Derivation, error) {
	rng := rand.New(rand.NewSource(seed))

	attempts := maxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		d, err := g.expand(startCategory, rng, 0, maxDepth)
		if err == nil {
			return d, nil
		}
		if !stderrors.Is(err, errDepthExceeded) {
			return nil, err
		}
		g.logger.Debug("derivation attempt exceeded depth", map[string]interface{}{
			"category": startCategory,
			"attempt":  attempt + 1,
			"maxDepth": maxDepth,
		})
	}
	return nil, errors.NewGenerationExhaustedError(startCategory, maxDepth, attempts)
}

func (g *Generator) expand(category string, rng *rand.Rand, depth, maxDepth int) (*Derivation, error) {
	if depth > maxDepth {
		return nil, errDepthExceeded
	}

	candidates := g.model.Productions(category)
	if len(candidates) == 0 {
		// Validate catches this before any generation; kept as a guard for
		// callers that skip validation.
		return nil, errors.NewUndeclaredSymbolError(category, 0)
	}

	p := g.policy.Select(category, candidates, rng)

	d := &Derivation{
		Category:   category,
		Production: p,
		Bindings:   make(map[string]knowledge.Entity),
	}

	// Bind wildcards in surface order. A variable already bound earlier in
	// this production instance is reused, never resampled (co-reference);
	// distinct variables of one category never share an entity.
	used := make(map[string]map[string]bool)
	for _, w := range p.Wildcards() {
		if _, ok := d.Bindings[w.Variable]; ok {
			continue
		}
		entity, err := g.kb.SampleExcluding(w.Category, rng, used[w.Category])
		if err != nil {
			return nil, err
		}
		d.Bindings[w.Variable] = entity
		if used[w.Category] == nil {
			used[w.Category] = make(map[string]bool)
		}
		used[w.Category][entity.Name] = true
	}

	for _, s := range p.NonTerminals() {
		child, err := g.expand(s.Category, rng, depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		d.Children = append(d.Children, child)
	}

	return d, nil
}
