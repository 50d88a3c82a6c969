package affinity

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBank() []Question {
	bank := []Question{
		{ID: "econ-strong", Axis: AxisWeights{AxisEcon: -0.9, AxisSocial: 0.1}},
		{ID: "social-strong", Axis: AxisWeights{AxisSocial: 1}},
		{ID: "env-strong", Axis: AxisWeights{AxisEnv: 0.95}},
	}
	for i := 0; i < 9; i++ {
		bank = append(bank, Question{
			ID: fmt.Sprintf("filler-%d", i),
			Axis: AxisWeights{
				AxisEcon:   0.1 * float64(i%3),
				AxisSocial: -0.05 * float64(i%4),
				AxisEnv:    0.08 * float64(i%5),
			},
		})
	}
	return bank
}

func ids(qs []Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func sortedIDs(qs []Question) []string {
	out := ids(qs)
	sort.Strings(out)
	return out
}

func TestSelect_FullBankIsPermutation(t *testing.T) {
	bank := sampleBank()
	s := NewSelector(rand.New(rand.NewSource(7)))

	for _, max := range []int{0, -1, len(bank), len(bank) + 5} {
		t.Run(fmt.Sprintf("max=%d", max), func(t *testing.T) {
			got := s.Select(bank, max)
			assert.Len(t, got, len(bank))
			assert.Equal(t, sortedIDs(bank), sortedIDs(got))
		})
	}
}

func TestSelect_DoesNotMutateBank(t *testing.T) {
	bank := sampleBank()
	before := ids(bank)

	s := NewSelector(rand.New(rand.NewSource(1)))
	s.Select(bank, 0)
	s.Select(bank, 5)

	assert.Equal(t, before, ids(bank))
}

func TestSelect_SubsetKeepsAxisChampions(t *testing.T) {
	bank := sampleBank()

	for seed := int64(0); seed < 50; seed++ {
		s := NewSelector(rand.New(rand.NewSource(seed)))
		for max := 3; max < len(bank); max++ {
			got := s.Select(bank, max)
			require.Len(t, got, max)

			gotIDs := ids(got)
			assert.Contains(t, gotIDs, "econ-strong")
			assert.Contains(t, gotIDs, "social-strong")
			assert.Contains(t, gotIDs, "env-strong")

			unique := make(map[string]bool, len(gotIDs))
			for _, id := range gotIDs {
				assert.False(t, unique[id], "duplicate %s", id)
				unique[id] = true
			}
		}
	}
}

func TestSelect_SameSeedSameSelection(t *testing.T) {
	bank := sampleBank()
	a := NewSelector(rand.New(rand.NewSource(99))).Select(bank, 6)
	b := NewSelector(rand.New(rand.NewSource(99))).Select(bank, 6)
	assert.Equal(t, ids(a), ids(b))
}

func TestSelect_MaxSmallerThanChampionCount(t *testing.T) {
	bank := sampleBank()
	got := NewSelector(rand.New(rand.NewSource(3))).Select(bank, 2)

	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{"econ-strong", "social-strong"}, ids(got))
}

func TestSelect_EmptyBank(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(1)))
	assert.Empty(t, s.Select(nil, 0))
	assert.Empty(t, s.Select([]Question{}, 5))
}

func TestAxisChampions(t *testing.T) {
	tests := []struct {
		name     string
		bank     []Question
		expected []string
	}{
		{
			name:     "one champion per axis",
			bank:     sampleBank(),
			expected: []string{"econ-strong", "social-strong", "env-strong"},
		},
		{
			name: "same question wins several axes",
			bank: []Question{
				{ID: "all", Axis: AxisWeights{AxisEcon: 1, AxisSocial: -1, AxisEnv: 1}},
				{ID: "weak", Axis: AxisWeights{AxisEcon: 0.2, AxisSocial: 0.2, AxisEnv: 0.2}},
			},
			expected: []string{"all"},
		},
		{
			name: "axis without weights has no champion",
			bank: []Question{
				{ID: "econ", Axis: AxisWeights{AxisEcon: 0.4}},
				{ID: "zero", Axis: AxisWeights{AxisEnv: 0}},
			},
			expected: []string{"econ"},
		},
		{
			name: "first question wins ties",
			bank: []Question{
				{ID: "first", Axis: AxisWeights{AxisSocial: -0.5}},
				{ID: "second", Axis: AxisWeights{AxisSocial: 0.5}},
			},
			expected: []string{"first"},
		},
		{
			name:     "empty bank",
			bank:     nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(AxisChampions(tt.bank)))
		})
	}
}
