package affinity

import "fmt"

// Phase is a step of the quiz flow.
type Phase string

const (
	PhaseIntro     Phase = "intro"
	PhaseQuestions Phase = "questions"
	PhaseResults   Phase = "results"
)

// Engine holds the immutable inputs shared by every quiz session.
type Engine struct {
	Bank         []Question
	Parties      []Party
	Heuristic    *Heuristic
	Selector     *Selector
	MaxQuestions int
	RunnersUp    int
}

// NewEngine wires an engine with the default heuristic and a clock-seeded selector.
func NewEngine(bank []Question, parties []Party, maxQuestions, runnersUp int) *Engine {
	return &Engine{
		Bank:         bank,
		Parties:      parties,
		Heuristic:    DefaultHeuristic(),
		Selector:     NewSelector(nil),
		MaxQuestions: maxQuestions,
		RunnersUp:    runnersUp,
	}
}

// Score accumulates the answers and ranks every party against the result.
func (e *Engine) Score(questions []Question, answers []Answer) (Outcome, error) {
	user, err := Accumulate(questions, answers)
	if err != nil {
		return Outcome{}, err
	}
	return e.Summarize(user), nil
}

// Summarize ranks the parties against an already accumulated user vector.
func (e *Engine) Summarize(user Vector) Outcome {
	return Summarize(user, Rank(user, e.Parties, e.Heuristic), e.RunnersUp)
}

// NewSession returns a session in the intro phase.
func (e *Engine) NewSession() *Session {
	return &Session{engine: e, phase: PhaseIntro}
}

// Session is one user's pass through intro, questions and results. It is
// not safe for concurrent use.
type Session struct {
	engine    *Engine
	phase     Phase
	questions []Question
	answers   []Answer
	outcome   *Outcome
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// Start moves from intro to questions with a freshly selected subset.
// max <= 0 falls back to the engine default.
func (s *Session) Start(max int) error {
	if s.phase != PhaseIntro {
		return fmt.Errorf("%w: cannot start from %s", ErrInvalidTransition, s.phase)
	}
	if max <= 0 {
		max = s.engine.MaxQuestions
	}

	questions := s.engine.Selector.Select(s.engine.Bank, max)
	if len(questions) == 0 {
		return ErrEmptyQuestionBank
	}

	s.questions = questions
	s.answers = make([]Answer, 0, len(questions))
	s.phase = PhaseQuestions
	return nil
}

// Current returns the prompt for the question awaiting an answer.
func (s *Session) Current() (Prompt, bool) {
	if s.phase != PhaseQuestions || len(s.answers) >= len(s.questions) {
		return Prompt{}, false
	}
	i := len(s.answers)
	return NewPrompt(s.questions[i], i, len(s.questions)), true
}

// Answer records a for the current question. After the last question it
// computes the outcome and moves to results, reporting done.
func (s *Session) Answer(a Answer) (bool, error) {
	if s.phase != PhaseQuestions {
		return false, fmt.Errorf("%w: cannot answer during %s", ErrInvalidTransition, s.phase)
	}
	if !a.Valid() {
		return false, fmt.Errorf("%w: %d", ErrInvalidAnswer, int(a))
	}

	s.answers = append(s.answers, a)
	if len(s.answers) < len(s.questions) {
		return false, nil
	}

	outcome, err := s.engine.Score(s.questions, s.answers)
	if err != nil {
		return false, err
	}
	s.outcome = &outcome
	s.phase = PhaseResults
	return true, nil
}

// Outcome returns the results once the session reached the results phase.
func (s *Session) Outcome() (Outcome, bool) {
	if s.phase != PhaseResults || s.outcome == nil {
		return Outcome{}, false
	}
	return *s.outcome, true
}

// Progress reports how many questions were answered out of the selection.
func (s *Session) Progress() (answered, total int) {
	return len(s.answers), len(s.questions)
}

// Questions returns the selected questions in presentation order.
func (s *Session) Questions() []Question {
	return append([]Question(nil), s.questions...)
}

// Answers returns the recorded answers in presentation order.
func (s *Session) Answers() []Answer {
	return append([]Answer(nil), s.answers...)
}

// Reset clears all answers and results and returns to intro.
func (s *Session) Reset() {
	s.phase = PhaseIntro
	s.questions = nil
	s.answers = nil
	s.outcome = nil
}
