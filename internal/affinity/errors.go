package affinity

import "errors"

var (
	// ErrEmptyQuestionBank means a quiz cannot start because no questions are configured.
	ErrEmptyQuestionBank = errors.New("question bank is empty")
	// ErrInvalidTransition means the quiz is not in a phase that allows the action.
	ErrInvalidTransition = errors.New("invalid quiz transition")
	// ErrInvalidAnswer means an answer is not agree, neutral or disagree.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrAnswerCountMismatch means answers and questions cannot be paired.
	ErrAnswerCountMismatch = errors.New("answer count does not match question count")
	// ErrInvalidRule means a heuristic rule is incomplete or contradicts its polarity.
	ErrInvalidRule = errors.New("invalid ideology rule")
)
