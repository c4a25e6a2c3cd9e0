package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"command-generator/internal/common/errors"
	"command-generator/internal/common/logger"
	"command-generator/internal/generator"
	"command-generator/internal/grammar"
	"command-generator/internal/knowledge"
	"command-generator/internal/models"
	"command-generator/internal/serializer"
)

// ==========================
// Test Helper Functions
// ==========================

func testRunner(t *testing.T, grammarSrc, kbDoc string) *Runner {
	t.Helper()
	model, err := grammar.Parse(strings.NewReader(grammarSrc), "test.grammar")
	require.NoError(t, err)
	kb, err := knowledge.Parse([]byte(kbDoc))
	require.NoError(t, err)
	require.NoError(t, model.Validate(kb))

	gen := generator.New(model, kb)
	return NewRunner(gen, serializer.New(serializer.Options{}), logger.NewTestLogger(t))
}

const fetchGrammar = `
$command = go to the {place} : goToLocation(?place)
$command = fetch the {object} from the {place} : fetchObject(?object, ?place)
`

const fetchKB = `{"categories": {
	"place":  [{"name": "kitchen"}, {"name": "bedroom"}, {"name": "bathroom"}],
	"object": [{"name": "apple"}, {"name": "coke"}, {"name": "milk"}]
}}`

func baseRequest() models.BatchRequest {
	return models.BatchRequest{
		StartCategory: "command",
		Count:         20,
		Seed:          100,
		MaxDepth:      5,
		MaxRetries:    3,
		Workers:       4,
	}
}

// ==========================
// Batch Run Tests
// ==========================

func TestRun_GeneratesRequestedCount(t *testing.T) {
	runner := testRunner(t, fetchGrammar, fetchKB)

	result, err := runner.Run(context.Background(), baseRequest())
	require.NoError(t, err)

	require.Len(t, result.Examples, 20)
	assert.Empty(t, result.Failures)
	assert.Positive(t, result.Duration)

	ids := map[string]bool{}
	for i, ex := range result.Examples {
		assert.Equal(t, int64(100+i), ex.Seed)
		assert.NotEmpty(t, ex.Utterance)
		assert.NotEmpty(t, ex.LogicalForm)
		assert.False(t, ids[ex.ID])
		ids[ex.ID] = true
	}
}

func TestRun_WorkerCountDoesNotChangeOutput(t *testing.T) {
	runner := testRunner(t, fetchGrammar, fetchKB)

	pairsFor := func(workers int) []models.Pair {
		req := baseRequest()
		req.Workers = workers
		result, err := runner.Run(context.Background(), req)
		require.NoError(t, err)
		pairs := make([]models.Pair, len(result.Examples))
		for i, ex := range result.Examples {
			pairs[i] = ex.Pair
		}
		return pairs
	}

	assert.Equal(t, pairsFor(1), pairsFor(4))
}

func TestRun_UniqueSkipsDuplicates(t *testing.T) {
	// One possible utterance; every example after the first is a duplicate.
	runner := testRunner(t,
		`$command = wave : wave()`,
		`{"categories": {}}`)

	req := baseRequest()
	req.Count = 5
	req.Unique = true

	result, err := runner.Run(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Examples, 1)
	require.Len(t, result.Failures, 4)
	for _, f := range result.Failures {
		assert.Equal(t, string(errors.ErrCodeDuplicateUtterance), f.Code)
	}
}

func TestRun_RecordsExhaustionAndContinues(t *testing.T) {
	// maxDepth 0 with a mandatory non-terminal child can never succeed, so
	// every unit fails, but the batch itself still completes with a summary.
	runner := testRunner(t, `
$command = $navigate : $navigate
$navigate = go to the {place} : goToLocation(?place)
`, fetchKB)

	req := baseRequest()
	req.Count = 6
	req.MaxDepth = 0

	result, err := runner.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Empty(t, result.Examples)
	require.Len(t, result.Failures, 6)
	for _, f := range result.Failures {
		assert.Equal(t, string(errors.ErrCodeGenerationExhausted), f.Code)
	}
}

func TestRun_FailuresSortedByIndex(t *testing.T) {
	runner := testRunner(t, `
$command = $navigate : $navigate
$navigate = go to the {place} : goToLocation(?place)
`, fetchKB)

	req := baseRequest()
	req.Count = 10
	req.MaxDepth = 0

	result, err := runner.Run(context.Background(), req)
	require.NoError(t, err)

	for i, f := range result.Failures {
		assert.Equal(t, i, f.Index)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	runner := testRunner(t, fetchGrammar, fetchKB)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, baseRequest())
	assert.Error(t, err)
}

func TestRun_ZeroWorkersFallsBackToOne(t *testing.T) {
	runner := testRunner(t, fetchGrammar, fetchKB)

	req := baseRequest()
	req.Workers = 0
	req.Count = 3

	result, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, result.Examples, 3)
}
