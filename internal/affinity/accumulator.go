package affinity

import "fmt"

// Accumulate sums weight*answer per axis over the answered questions.
// The result is not clamped and does not depend on question order.
func Accumulate(questions []Question, answers []Answer) (Vector, error) {
	if len(questions) != len(answers) {
		return Vector{}, fmt.Errorf("%w: %d questions, %d answers", ErrAnswerCountMismatch, len(questions), len(answers))
	}

	var v Vector
	for i, q := range questions {
		a := answers[i]
		if !a.Valid() {
			return Vector{}, fmt.Errorf("%w: %d for question %q", ErrInvalidAnswer, int(a), q.ID)
		}
		for _, axis := range Axes {
			v.add(axis, q.Axis.Weight(axis)*float64(a))
		}
	}
	return v, nil
}
