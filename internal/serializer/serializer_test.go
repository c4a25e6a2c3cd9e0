package serializer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"command-generator/internal/generator"
	"command-generator/internal/grammar"
	"command-generator/internal/knowledge"
	"command-generator/internal/semantics"
)

// ==========================
// Test Helper Functions
// ==========================

func renderPair(t *testing.T, grammarSrc, kbDoc string, seed int64, opts Options) (string, string) {
	t.Helper()
	model, err := grammar.Parse(strings.NewReader(grammarSrc), "test.grammar")
	require.NoError(t, err)
	kb, err := knowledge.Parse([]byte(kbDoc))
	require.NoError(t, err)
	require.NoError(t, model.Validate(kb))

	gen := generator.New(model, kb)
	d, err := gen.Generate(context.Background(), model.Start(), seed, 5, 3)
	require.NoError(t, err)
	lf, err := semantics.Compose(d)
	require.NoError(t, err)

	pair := New(opts).Render(d, lf)
	return pair.Utterance, pair.LogicalForm
}

// ==========================
// Rendering Tests
// ==========================

func TestRender_PairIsAUnit(t *testing.T) {
	utterance, logicalForm := renderPair(t,
		`$command = go to the {place} : goToLocation(?place)`,
		`{"categories": {"place": [{"name": "kitchen"}]}}`,
		42, Options{})

	assert.Equal(t, "go to the kitchen", utterance)
	assert.Equal(t, "goToLocation(kitchen)", logicalForm)
}

func TestRender_FlattensNestedDerivations(t *testing.T) {
	utterance, logicalForm := renderPair(t, `
$command = please $navigate right now : politely($navigate)
$navigate = go to the {place} : goToLocation(?place)
`,
		`{"categories": {"place": [{"name": "bedroom"}]}}`,
		1, Options{})

	assert.Equal(t, "please go to the bedroom right now", utterance)
	assert.Equal(t, "politely(goToLocation(bedroom))", logicalForm)
}

func TestRender_MultiWordEntityStaysIntact(t *testing.T) {
	utterance, _ := renderPair(t,
		`$command = go to the {place} : goToLocation(?place)`,
		`{"categories": {"place": [{"name": "living room"}]}}`,
		1, Options{})

	assert.Equal(t, "go to the living room", utterance)
}

func TestRender_Lowercase(t *testing.T) {
	utterance, logicalForm := renderPair(t,
		`$command = Bring me the {object} : fetchObject(?object)`,
		`{"categories": {"object": [{"name": "Coke"}]}}`,
		1, Options{Lowercase: true})

	assert.Equal(t, "bring me the coke", utterance)
	// Case normalization is a surface concern only.
	assert.Equal(t, "fetchObject(Coke)", logicalForm)
}

func TestRender_TrailingPunctuation(t *testing.T) {
	utterance, _ := renderPair(t,
		`$command = wave : wave()`,
		`{"categories": {}}`,
		1, Options{TrailingPunctuation: "."})

	assert.Equal(t, "wave.", utterance)
}

func TestRenderLogicalForm(t *testing.T) {
	lf := semantics.NewApplication("sequence",
		semantics.NewApplication("goToLocation", semantics.NewConstant("kitchen")),
		semantics.NewApplication("fetchObject",
			semantics.NewConstant("coke"),
			semantics.NewConstant("kitchen")),
	)
	assert.Equal(t, "sequence(goToLocation(kitchen), fetchObject(coke, kitchen))",
		RenderLogicalForm(lf))

	assert.Equal(t, "wave()", RenderLogicalForm(semantics.NewApplication("wave")))
	assert.Equal(t, "kitchen", RenderLogicalForm(semantics.NewConstant("kitchen")))
}

// Every entity grounded in the utterance must appear in the logical form and
// vice versa when the grammar references every wildcard it binds.
func TestRender_EntitySetsAgree(t *testing.T) {
	grammarSrc := `
$command = bring the {object} from the {place source} to the {place target} : moveObject(?object, ?source, ?target)
`
	kbDoc := `{"categories": {
		"object": [{"name": "apple"}, {"name": "coke"}],
		"place":  [{"name": "kitchen"}, {"name": "bedroom"}, {"name": "living room"}]
	}}`

	model, err := grammar.Parse(strings.NewReader(grammarSrc), "test.grammar")
	require.NoError(t, err)
	kb, err := knowledge.Parse([]byte(kbDoc))
	require.NoError(t, err)
	require.NoError(t, model.Validate(kb))
	gen := generator.New(model, kb)
	ser := New(Options{})

	for seed := int64(0); seed < 25; seed++ {
		d, err := gen.Generate(context.Background(), "command", seed, 5, 3)
		require.NoError(t, err)
		lf, err := semantics.Compose(d)
		require.NoError(t, err)
		pair := ser.Render(d, lf)

		for _, constant := range lf.Constants() {
			assert.Contains(t, pair.Utterance, constant)
			assert.Contains(t, pair.LogicalForm, constant)
		}
		for _, entity := range d.Entities() {
			assert.Contains(t, pair.LogicalForm, entity.Name)
		}
	}
}
