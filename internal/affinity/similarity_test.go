package affinity

import (
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineAndPercentage_ExampleScenario(t *testing.T) {
	user, err := Accumulate(unitQuestions(), []Answer{Agree, Disagree, Neutral})
	require.NoError(t, err)
	require.Equal(t, Vector{Econ: 1, Social: -1, Env: 0}, user)

	tests := []struct {
		name       string
		party      Vector
		similarity float64
		percentage int
	}{
		{name: "identical direction", party: Vector{Econ: 1, Social: -1}, similarity: 1, percentage: 100},
		{name: "opposite direction", party: Vector{Econ: -1, Social: 1}, similarity: -1, percentage: 0},
		{name: "zero party vector", party: Vector{}, similarity: 0, percentage: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := Cosine(user, tt.party)
			assert.InDelta(t, tt.similarity, sim, 1e-9)
			assert.Equal(t, tt.percentage, Percentage(sim))
		})
	}
}

func TestCosine_ZeroVectorIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Cosine(Vector{}, Vector{Econ: 1}))
	assert.Equal(t, 0.0, Cosine(Vector{Env: -3}, Vector{}))
	assert.Equal(t, 0.0, Cosine(Vector{}, Vector{}))
}

func TestCosine_RangeAndSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randomVector := func() Vector {
		return Vector{
			Econ:   rng.Float64()*10 - 5,
			Social: rng.Float64()*10 - 5,
			Env:    rng.Float64()*10 - 5,
		}
	}

	for i := 0; i < 500; i++ {
		a, b := randomVector(), randomVector().Clamp(-1, 1)
		ab, ba := Cosine(a, b), Cosine(b, a)

		assert.Equal(t, ab, ba)
		assert.GreaterOrEqual(t, ab, -1.0)
		assert.LessOrEqual(t, ab, 1.0)

		p := Percentage(ab)
		assert.GreaterOrEqual(t, p, 0)
		assert.LessOrEqual(t, p, 100)
	}
}

func testHeuristic(t *testing.T) *Heuristic {
	t.Helper()
	h, err := NewHeuristic(
		Rule{Name: "market", Pattern: regexp.MustCompile(`market`), Axis: AxisEcon, Delta: 1, Polarity: 1},
		Rule{Name: "state", Pattern: regexp.MustCompile(`state`), Axis: AxisEcon, Delta: -1, Polarity: -1},
		Rule{Name: "tradition", Pattern: regexp.MustCompile(`tradition`), Axis: AxisSocial, Delta: 1, Polarity: 1},
		Rule{Name: "progress", Pattern: regexp.MustCompile(`progress`), Axis: AxisSocial, Delta: -1, Polarity: -1},
	)
	require.NoError(t, err)
	return h
}

func TestRank_OrdersByPercentage(t *testing.T) {
	parties := []Party{
		{Slug: "opposite", Ideology: "state tradition"},
		{Slug: "neutral", Ideology: "centrist"},
		{Slug: "match", Ideology: "market progress"},
	}

	results := Rank(Vector{Econ: 1, Social: -1}, parties, testHeuristic(t))
	require.Len(t, results, 3)

	assert.Equal(t, "match", results[0].Party.Slug)
	assert.Equal(t, 100, results[0].Percentage)
	assert.Equal(t, Vector{Econ: 1, Social: -1}, results[0].Vector)

	assert.Equal(t, "neutral", results[1].Party.Slug)
	assert.Equal(t, 50, results[1].Percentage)

	assert.Equal(t, "opposite", results[2].Party.Slug)
	assert.Equal(t, 0, results[2].Percentage)
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	parties := []Party{
		{Slug: "first", Ideology: "centrist"},
		{Slug: "better", Ideology: "market"},
		{Slug: "second", Ideology: "moderate"},
		{Slug: "third", Ideology: "independent"},
	}

	results := Rank(Vector{Econ: 1}, parties, testHeuristic(t))
	require.Len(t, results, 4)

	slugs := make([]string, len(results))
	for i, r := range results {
		slugs[i] = r.Party.Slug
	}
	assert.Equal(t, []string{"better", "first", "second", "third"}, slugs)
}

func TestRank_EmptyParties(t *testing.T) {
	results := Rank(Vector{Econ: 1}, nil, DefaultHeuristic())
	assert.Empty(t, results)

	out := Summarize(Vector{Econ: 1}, results, 3)
	assert.Nil(t, out.BestMatch)
	assert.Empty(t, out.RunnersUp)
}

func TestSummarize(t *testing.T) {
	results := []PartyResult{
		{Party: Party{Slug: "a"}, Percentage: 90},
		{Party: Party{Slug: "b"}, Percentage: 80},
		{Party: Party{Slug: "c"}, Percentage: 70},
		{Party: Party{Slug: "d"}, Percentage: 60},
	}

	out := Summarize(Vector{Econ: 1}, results, 2)
	require.NotNil(t, out.BestMatch)
	assert.Equal(t, "a", out.BestMatch.Party.Slug)
	require.Len(t, out.RunnersUp, 2)
	assert.Equal(t, "b", out.RunnersUp[0].Party.Slug)
	assert.Equal(t, "c", out.RunnersUp[1].Party.Slug)
	assert.Len(t, out.Results, 4)

	all := Summarize(Vector{Econ: 1}, results, 10)
	assert.Len(t, all.RunnersUp, 3)
}
