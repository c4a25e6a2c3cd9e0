// internal/generator/policy.go
package generator

import (
	"math/rand"
	"sync"

	"command-generator/internal/grammar"
)

// SelectionPolicy picks one production for a non-terminal out of its
// candidates. Randomness must come exclusively from the rng the generator
// passes in, so a seeded call stays reproducible.
type SelectionPolicy interface {
	Select(category string, candidates []*grammar.Production, rng *rand.Rand) *grammar.Production
}

// Policy names accepted in configuration and batch requests.
const (
	PolicyRandom     = "random"
	PolicyWeighted   = "weighted"
	PolicyExhaustive = "exhaustive"
)

// PolicyByName maps a configured policy name to an instance. Unknown names
// fall back to uniform random selection.
func PolicyByName(name string) SelectionPolicy {
	switch name {
	case PolicyWeighted:
		return WeightedPolicy{}
	case PolicyExhaustive:
		return NewExhaustivePolicy()
	default:
		return RandomPolicy{}
	}
}

// RandomPolicy selects uniformly at random.
type RandomPolicy struct{}

func (RandomPolicy) Select(_ string, candidates []*grammar.Production, rng *rand.Rand) *grammar.Production {
	return candidates[rng.Intn(len(candidates))]
}

// WeightedPolicy selects proportionally to each production's weight
// annotation.
type WeightedPolicy struct{}

func (WeightedPolicy) Select(_ string, candidates []*grammar.Production, rng *rand.Rand) *grammar.Production {
	total := 0
	for _, p := range candidates {
		total += p.Weight
	}
	pick := rng.Intn(total)
	for _, p := range candidates {
		pick -= p.Weight
		if pick < 0 {
			return p
		}
	}
	return candidates[len(candidates)-1]
}

// ExhaustivePolicy cycles through a category's productions in declaration
// order, so every production is selected once before any repeats. It keeps a
// cursor per category and is safe for use from concurrent workers.
type ExhaustivePolicy struct {
	mu      sync.Mutex
	cursors map[string]int
}

func NewExhaustivePolicy() *ExhaustivePolicy {
	return &ExhaustivePolicy{cursors: make(map[string]int)}
}

func (p *ExhaustivePolicy) Select(category string, candidates []*grammar.Production, _ *rand.Rand) *grammar.Production {
	p.mu.Lock()
	defer p.mu.Unlock()
	cursor := p.cursors[category]
	p.cursors[category] = cursor + 1
	return candidates[cursor%len(candidates)]
}
