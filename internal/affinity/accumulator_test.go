package affinity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitQuestions() []Question {
	return []Question{
		{ID: "econ", Axis: AxisWeights{AxisEcon: 1}},
		{ID: "social", Axis: AxisWeights{AxisSocial: 1}},
		{ID: "env", Axis: AxisWeights{AxisEnv: 1}},
	}
}

func TestAccumulate(t *testing.T) {
	tests := []struct {
		name      string
		questions []Question
		answers   []Answer
		expected  Vector
	}{
		{
			name:      "agree disagree neutral on unit axes",
			questions: unitQuestions(),
			answers:   []Answer{Agree, Disagree, Neutral},
			expected:  Vector{Econ: 1, Social: -1, Env: 0},
		},
		{
			name:      "no questions yields zero vector",
			questions: nil,
			answers:   nil,
			expected:  Vector{},
		},
		{
			name: "weights combine across questions without clamping",
			questions: []Question{
				{ID: "a", Axis: AxisWeights{AxisEcon: 1, AxisEnv: -0.5}},
				{ID: "b", Axis: AxisWeights{AxisEcon: 0.8}},
				{ID: "c", Axis: AxisWeights{AxisEcon: 0.7, AxisSocial: 0.25}},
			},
			answers:  []Answer{Agree, Agree, Agree},
			expected: Vector{Econ: 2.5, Social: 0.25, Env: -0.5},
		},
		{
			name:      "missing axis weights contribute nothing",
			questions: []Question{{ID: "empty"}},
			answers:   []Answer{Agree},
			expected:  Vector{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Accumulate(tt.questions, tt.answers)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected.Econ, v.Econ, 1e-9)
			assert.InDelta(t, tt.expected.Social, v.Social, 1e-9)
			assert.InDelta(t, tt.expected.Env, v.Env, 1e-9)
		})
	}
}

func TestAccumulate_OrderIndependent(t *testing.T) {
	qs := []Question{
		{ID: "a", Axis: AxisWeights{AxisEcon: 0.3, AxisSocial: -0.6}},
		{ID: "b", Axis: AxisWeights{AxisEnv: 0.9}},
		{ID: "c", Axis: AxisWeights{AxisEcon: -0.4, AxisEnv: 0.2}},
	}
	as := []Answer{Agree, Disagree, Agree}

	forward, err := Accumulate(qs, as)
	require.NoError(t, err)

	reversed, err := Accumulate(
		[]Question{qs[2], qs[1], qs[0]},
		[]Answer{as[2], as[1], as[0]},
	)
	require.NoError(t, err)

	assert.InDelta(t, forward.Econ, reversed.Econ, 1e-12)
	assert.InDelta(t, forward.Social, reversed.Social, 1e-12)
	assert.InDelta(t, forward.Env, reversed.Env, 1e-12)
}

func TestAccumulate_Errors(t *testing.T) {
	_, err := Accumulate(unitQuestions(), []Answer{Agree})
	assert.ErrorIs(t, err, ErrAnswerCountMismatch)

	_, err = Accumulate(unitQuestions(), []Answer{Agree, Answer(3), Neutral})
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}
