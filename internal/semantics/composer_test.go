package semantics

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"command-generator/internal/common/errors"
	"command-generator/internal/generator"
	"command-generator/internal/grammar"
	"command-generator/internal/knowledge"
)

// ==========================
// Test Helper Functions
// ==========================

func derive(t *testing.T, grammarSrc, kbDoc, start string, seed int64) *generator.Derivation {
	t.Helper()
	model, err := grammar.Parse(strings.NewReader(grammarSrc), "test.grammar")
	require.NoError(t, err)
	kb, err := knowledge.Parse([]byte(kbDoc))
	require.NoError(t, err)
	require.NoError(t, model.Validate(kb))

	gen := generator.New(model, kb)
	d, err := gen.Generate(context.Background(), start, seed, 5, 3)
	require.NoError(t, err)
	return d
}

// ==========================
// Composition Tests
// ==========================

func TestCompose_WildcardBecomesConstant(t *testing.T) {
	d := derive(t,
		`$command = go to the {place} : goToLocation(?place)`,
		`{"categories": {"place": [{"name": "kitchen"}]}}`,
		"command", 42)

	lf, err := Compose(d)
	require.NoError(t, err)

	require.Equal(t, FormApplication, lf.Kind)
	assert.Equal(t, "goToLocation", lf.Functor)
	require.Len(t, lf.Args, 1)
	assert.Equal(t, NewConstant("kitchen"), lf.Args[0])
}

func TestCompose_ChildHoleGetsComposedSubtree(t *testing.T) {
	d := derive(t, `
$command = please $navigate : politely($navigate)
$navigate = go to the {place} : goToLocation(?place)
`,
		`{"categories": {"place": [{"name": "bedroom"}]}}`,
		"command", 1)

	lf, err := Compose(d)
	require.NoError(t, err)

	assert.Equal(t, "politely", lf.Functor)
	require.Len(t, lf.Args, 1)
	inner := lf.Args[0]
	assert.Equal(t, "goToLocation", inner.Functor)
	assert.Equal(t, []string{"bedroom"}, inner.Constants())
}

func TestCompose_PositionalChildren(t *testing.T) {
	d := derive(t, `
$command = $navigate and then $navigate : sequence($1, $2)
$navigate = go to the {place} : goToLocation(?place)
`,
		`{"categories": {"place": [{"name": "kitchen"}, {"name": "bedroom"}]}}`,
		"command", 3)

	lf, err := Compose(d)
	require.NoError(t, err)

	require.Len(t, lf.Args, 2)
	assert.Equal(t, "goToLocation", lf.Args[0].Functor)
	assert.Equal(t, "goToLocation", lf.Args[1].Functor)
}

func TestCompose_CoreferencePropagatesOneEntity(t *testing.T) {
	d := derive(t,
		`$command = match the {object o} with another {object o} : pair(?o, ?o)`,
		`{"categories": {"object": [{"name": "apple"}, {"name": "coke"}, {"name": "milk"}]}}`,
		"command", 11)

	lf, err := Compose(d)
	require.NoError(t, err)

	constants := lf.Constants()
	require.Len(t, constants, 2)
	assert.Equal(t, constants[0], constants[1])
}

func TestCompose_ConstantArgumentsSurviveVerbatim(t *testing.T) {
	d := derive(t,
		`$command = wave : gesture(wave, slow)`,
		`{"categories": {}}`,
		"command", 1)

	lf, err := Compose(d)
	require.NoError(t, err)
	assert.Equal(t, []string{"wave", "slow"}, lf.Constants())
}

// Bindings are scoped to one production instance; a template hole that names
// a variable its own production never bound must fail, not borrow an
// ancestor's binding.
func TestCompose_UnresolvedVariable(t *testing.T) {
	model, err := grammar.Parse(strings.NewReader(
		`$command = go to the {place} : goToLocation(?room)`), "test.grammar")
	require.NoError(t, err)
	kb, err := knowledge.Parse([]byte(`{"categories": {"place": [{"name": "kitchen"}]}}`))
	require.NoError(t, err)

	// Skip Validate on purpose: Compose must still refuse to emit a form
	// with an unresolved hole.
	gen := generator.New(model, kb)
	d, err := gen.Generate(context.Background(), "command", 42, 5, 3)
	require.NoError(t, err)

	_, err = Compose(d)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnresolvedVariable, err.(*errors.StandardError).Code)
}
