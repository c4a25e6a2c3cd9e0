// internal/knowledge/knowledge.go

// Package knowledge loads the entity inventory that fills grammar wildcards.
package knowledge

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"command-generator/internal/common/errors"
)

// Entity is one concrete value of a knowledge-base category.
type Entity struct {
	Name   string `json:"name"`
	Weight int    `json:"weight,omitempty"`
}

// Base is the loaded inventory, keyed by category name. Like the grammar
// model it is immutable after load and safe to share across generation calls.
type Base struct {
	version    string
	categories map[string][]Entity
	weighted   bool
}

// Option configures a Base at load time.
type Option func(*Base)

// WithWeightedSampling makes Sample honor per-entity weights instead of
// drawing uniformly.
func WithWeightedSampling() Option {
	return func(b *Base) { b.weighted = true }
}

type document struct {
	Version    string              `json:"version"`
	Categories map[string][]Entity `json:"categories"`
}

// Load reads and validates a knowledge-base file.
func Load(path string, opts ...Option) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewKnowledgeSchemaInvalidError(fmt.Sprintf("read %s: %v", path, err))
	}
	return Parse(data, opts...)
}

// Parse validates the document against the schema and builds the inventory.
func Parse(data []byte, opts ...Option) (*Base, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, errors.NewKnowledgeSchemaInvalidError(err.Error())
	}
	if !result.Valid() {
		details := ""
		for _, desc := range result.Errors() {
			if details != "" {
				details += "; "
			}
			details += desc.String()
		}
		return nil, errors.NewKnowledgeSchemaInvalidError(details)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewKnowledgeSchemaInvalidError(err.Error())
	}

	b := &Base{
		version:    doc.Version,
		categories: make(map[string][]Entity, len(doc.Categories)),
	}
	for category, entities := range doc.Categories {
		normalized := make([]Entity, len(entities))
		for i, e := range entities {
			if e.Weight < 1 {
				e.Weight = 1
			}
			normalized[i] = e
		}
		b.categories[category] = normalized
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Version returns the document version string.
func (b *Base) Version() string { return b.version }

// Categories enumerates the inventory's categories, sorted.
func (b *Base) Categories() []string {
	out := make([]string, 0, len(b.categories))
	for c := range b.categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of entities in a category, 0 if absent.
func (b *Base) Count(category string) int {
	return len(b.categories[category])
}

// Entities returns the entity list for a category. Absent or empty
// categories are an error: a grammar wildcard can never be filled from them.
func (b *Base) Entities(category string) ([]Entity, error) {
	entities := b.categories[category]
	if len(entities) == 0 {
		return nil, errors.NewUnknownCategoryError(category)
	}
	return entities, nil
}

// Sample draws one entity from a category using the caller's random source.
// Uniform by default; weighted when the base was loaded with
// WithWeightedSampling.
func (b *Base) Sample(category string, rng *rand.Rand) (Entity, error) {
	return b.SampleExcluding(category, rng, nil)
}

// SampleExcluding draws like Sample but never returns an entity whose name is
// in exclude. An empty remainder is an error: the category cannot fill
// another distinct wildcard.
func (b *Base) SampleExcluding(category string, rng *rand.Rand, exclude map[string]bool) (Entity, error) {
	entities, err := b.Entities(category)
	if err != nil {
		return Entity{}, err
	}
	if len(exclude) > 0 {
		remaining := make([]Entity, 0, len(entities))
		for _, e := range entities {
			if !exclude[e.Name] {
				remaining = append(remaining, e)
			}
		}
		if len(remaining) == 0 {
			return Entity{}, errors.NewInsufficientEntitiesError(category, len(exclude)+1, len(entities))
		}
		entities = remaining
	}

	if !b.weighted {
		return entities[rng.Intn(len(entities))], nil
	}

	total := 0
	for _, e := range entities {
		total += e.Weight
	}
	pick := rng.Intn(total)
	for _, e := range entities {
		pick -= e.Weight
		if pick < 0 {
			return e, nil
		}
	}
	return entities[len(entities)-1], nil
}
