package knowledge

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"command-generator/internal/common/errors"
)

// ==========================
// Test Helper Functions
// ==========================

const validDocument = `{
  "version": "1.0",
  "categories": {
    "place":  [{"name": "kitchen"}, {"name": "bedroom"}],
    "object": [{"name": "apple", "weight": 9}, {"name": "coke"}]
  }
}`

func parseBase(t *testing.T, doc string, opts ...Option) *Base {
	t.Helper()
	base, err := Parse([]byte(doc), opts...)
	require.NoError(t, err)
	return base
}

// ==========================
// Loading Tests
// ==========================

func TestParse_ValidDocument(t *testing.T) {
	base := parseBase(t, validDocument)

	assert.Equal(t, "1.0", base.Version())
	assert.Equal(t, []string{"object", "place"}, base.Categories())
	assert.Equal(t, 2, base.Count("place"))
	assert.Equal(t, 0, base.Count("person"))

	entities, err := base.Entities("object")
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, 9, entities[0].Weight)
	// Weight defaults to 1 when omitted.
	assert.Equal(t, 1, entities[1].Weight)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	require.NoError(t, os.WriteFile(path, []byte(validDocument), 0o644))

	base, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, base.Count("place"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `kitchen, bedroom`},
		{"missing categories", `{"version": "1.0"}`},
		{"entity without name", `{"categories": {"place": [{"weight": 2}]}}`},
		{"zero weight", `{"categories": {"place": [{"name": "kitchen", "weight": 0}]}}`},
		{"entity as bare string", `{"categories": {"place": ["kitchen"]}}`},
		{"unknown top-level key", `{"categories": {}, "entities": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			stdErr, ok := err.(*errors.StandardError)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeKnowledgeSchemaInvalid, stdErr.Code)
		})
	}
}

// ==========================
// Lookup and Sampling Tests
// ==========================

func TestEntities_UnknownCategory(t *testing.T) {
	base := parseBase(t, `{"categories": {"place": [], "object": [{"name": "apple"}]}}`)

	for _, category := range []string{"place", "person"} {
		_, err := base.Entities(category)
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeUnknownCategory, err.(*errors.StandardError).Code)

		_, err = base.Sample(category, rand.New(rand.NewSource(1)))
		assert.Error(t, err)
	}
}

func TestSample_DeterministicForSeed(t *testing.T) {
	base := parseBase(t, validDocument)

	first := make([]string, 0, 10)
	second := make([]string, 0, 10)
	for _, out := range []*[]string{&first, &second} {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 10; i++ {
			e, err := base.Sample("place", rng)
			require.NoError(t, err)
			*out = append(*out, e.Name)
		}
	}
	assert.Equal(t, first, second)
}

func TestSample_UniformCoversAllEntities(t *testing.T) {
	base := parseBase(t, validDocument)
	rng := rand.New(rand.NewSource(7))

	seen := map[string]int{}
	for i := 0; i < 200; i++ {
		e, err := base.Sample("place", rng)
		require.NoError(t, err)
		seen[e.Name]++
	}
	assert.Positive(t, seen["kitchen"])
	assert.Positive(t, seen["bedroom"])
}

func TestSampleExcluding(t *testing.T) {
	base := parseBase(t, validDocument)
	rng := rand.New(rand.NewSource(5))

	// With one of two places excluded only the other can be drawn.
	for i := 0; i < 20; i++ {
		e, err := base.SampleExcluding("place", rng, map[string]bool{"kitchen": true})
		require.NoError(t, err)
		assert.Equal(t, "bedroom", e.Name)
	}

	_, err := base.SampleExcluding("place", rng, map[string]bool{"kitchen": true, "bedroom": true})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnknownCategory, err.(*errors.StandardError).Code)
}

func TestSample_WeightedPrefersHeavyEntities(t *testing.T) {
	base := parseBase(t, validDocument, WithWeightedSampling())
	rng := rand.New(rand.NewSource(7))

	seen := map[string]int{}
	for i := 0; i < 500; i++ {
		e, err := base.Sample("object", rng)
		require.NoError(t, err)
		seen[e.Name]++
	}
	// apple carries weight 9 vs coke's 1; anything close to uniform means
	// the weights were ignored.
	assert.Greater(t, seen["apple"], seen["coke"]*3)
}
