package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/election-affinity/internal/affinity"
	apperrors "github.com/ZanzyTHEbar/election-affinity/internal/errors"
	"github.com/ZanzyTHEbar/election-affinity/internal/security"
	"github.com/ZanzyTHEbar/election-affinity/internal/sessions"
)

// maxQuestionsLimit bounds the max parameter accepted from clients.
const maxQuestionsLimit = 100

type progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

type sessionState struct {
	ID       string           `json:"id"`
	Phase    affinity.Phase   `json:"phase"`
	Progress progress         `json:"progress"`
	Question *affinity.Prompt `json:"question,omitempty"`
	resultView
}

// resultView is embedded in every response that carries a completed outcome.
type resultView struct {
	Outcome        *affinity.Outcome `json:"outcome,omitempty"`
	ShareToken     string            `json:"share_token,omitempty"`
	ShareExpiresAt *time.Time        `json:"share_expires_at,omitempty"`
}

type startRequest struct {
	Max int `json:"max"`
}

type answerRequest struct {
	Answer *affinity.Answer `json:"answer"`
}

func snapshot(id string, sess *affinity.Session) sessionState {
	answered, total := sess.Progress()
	state := sessionState{
		ID:       id,
		Phase:    sess.Phase(),
		Progress: progress{Answered: answered, Total: total},
	}
	if prompt, ok := sess.Current(); ok {
		state.Question = &prompt
	}
	if outcome, ok := sess.Outcome(); ok {
		state.Outcome = &outcome
	}
	return state
}

// withShare signs the user vector of a finished outcome. A signing failure
// only drops the share link.
func (s *Server) withShare(view *resultView, questionCount int) {
	if view.Outcome == nil {
		return
	}
	token, expiresAt, err := s.signer.Issue(view.Outcome.UserVector, questionCount)
	if err != nil {
		s.logger.Warn("Failed to issue share token", "error", err)
		return
	}
	view.ShareToken = token
	view.ShareExpiresAt = &expiresAt
}

func parseMax(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > maxQuestionsLimit {
		return 0, apperrors.NewValidationError("max must be an integer between 0 and "+strconv.Itoa(maxQuestionsLimit), raw)
	}
	return n, nil
}

// bindOptional decodes a JSON body when one is present.
func bindOptional(c *gin.Context, target any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(target); err != nil {
		return apperrors.NewValidationError("Invalid request body", err.Error())
	}
	return nil
}

func sessionError(id string, err error) error {
	if errors.Is(err, sessions.ErrNotFound) {
		return apperrors.NewNotFoundError("session", id)
	}
	return err
}

func (s *Server) sessionID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !security.ValidIdentifier(id) {
		fail(c, apperrors.NewValidationError("Invalid session id", id))
		return "", false
	}
	return id, true
}

// @Summary Select a question subset
// @Description Selection always includes the strongest question per axis when max allows.
// @Tags quiz
// @Produce json
// @Param max query int false "Number of questions, 0 for the configured default"
// @Router /quiz/questions [get]
func (s *Server) selectQuestions(c *gin.Context) {
	n, err := parseMax(c.Query("max"))
	if err != nil {
		fail(c, err)
		return
	}
	if n == 0 {
		n = s.engine.MaxQuestions
	}

	selected := s.engine.Selector.Select(s.engine.Bank, n)
	prompts := make([]affinity.Prompt, 0, len(selected))
	for i, q := range selected {
		prompts = append(prompts, affinity.NewPrompt(q, i, len(selected)))
	}
	c.JSON(http.StatusOK, gin.H{"questions": prompts})
}

// @Summary Create a quiz session and start it
// @Tags quiz
// @Accept json
// @Produce json
// @Param body body startRequest false "Session options"
// @Success 201 {object} sessionState
// @Router /quiz/sessions [post]
func (s *Server) createSession(c *gin.Context) {
	var req startRequest
	if err := bindOptional(c, &req); err != nil {
		fail(c, err)
		return
	}
	if _, err := parseMax(strconv.Itoa(req.Max)); err != nil {
		fail(c, err)
		return
	}

	id, _ := s.sessions.Create()
	var state sessionState
	err := s.sessions.With(id, func(sess *affinity.Session) error {
		if err := sess.Start(req.Max); err != nil {
			return err
		}
		state = snapshot(id, sess)
		return nil
	})
	if err != nil {
		_ = s.sessions.Delete(id)
		fail(c, sessionError(id, err))
		return
	}

	s.metrics.IncrementSessionStarted()
	s.logger.QuizLogger("started", id, string(state.Phase), state.Progress.Answered, state.Progress.Total)
	c.JSON(http.StatusCreated, state)
}

// @Summary Get the state of a quiz session
// @Tags quiz
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} sessionState
// @Router /quiz/sessions/{id} [get]
func (s *Server) getSession(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}

	var state sessionState
	err := s.sessions.With(id, func(sess *affinity.Session) error {
		state = snapshot(id, sess)
		return nil
	})
	if err != nil {
		fail(c, sessionError(id, err))
		return
	}

	s.withShare(&state.resultView, state.Progress.Total)
	c.JSON(http.StatusOK, state)
}

// @Summary Answer the current question
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param body body answerRequest true "agree, neutral, disagree or 1, 0, -1"
// @Success 200 {object} sessionState
// @Router /quiz/sessions/{id}/answers [post]
func (s *Server) answerSession(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.NewValidationError("Invalid answer", err.Error()))
		return
	}
	if req.Answer == nil {
		fail(c, apperrors.NewValidationError("answer is required"))
		return
	}

	start := time.Now()
	var (
		state sessionState
		done  bool
	)
	err := s.sessions.With(id, func(sess *affinity.Session) error {
		var err error
		done, err = sess.Answer(*req.Answer)
		if err != nil {
			return err
		}
		state = snapshot(id, sess)
		return nil
	})
	if err != nil {
		fail(c, sessionError(id, err))
		return
	}

	s.metrics.RecordAnswer(req.Answer.String())
	s.logger.QuizLogger("answered", id, string(state.Phase), state.Progress.Answered, state.Progress.Total)

	if done {
		s.withShare(&state.resultView, state.Progress.Total)
		s.recordOutcome("session", state.Outcome, state.Progress.Total, time.Since(start))
	}
	c.JSON(http.StatusOK, state)
}

// @Summary Return a session to the intro phase
// @Tags quiz
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} sessionState
// @Router /quiz/sessions/{id}/reset [post]
func (s *Server) resetSession(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}

	var state sessionState
	err := s.sessions.With(id, func(sess *affinity.Session) error {
		sess.Reset()
		state = snapshot(id, sess)
		return nil
	})
	if err != nil {
		fail(c, sessionError(id, err))
		return
	}

	s.logger.QuizLogger("reset", id, string(state.Phase), 0, 0)
	c.JSON(http.StatusOK, state)
}

// @Summary Start a session that is in the intro phase
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param body body startRequest false "Session options"
// @Success 200 {object} sessionState
// @Router /quiz/sessions/{id}/start [post]
func (s *Server) startSession(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}

	var req startRequest
	if err := bindOptional(c, &req); err != nil {
		fail(c, err)
		return
	}
	if _, err := parseMax(strconv.Itoa(req.Max)); err != nil {
		fail(c, err)
		return
	}

	var state sessionState
	err := s.sessions.With(id, func(sess *affinity.Session) error {
		if err := sess.Start(req.Max); err != nil {
			return err
		}
		state = snapshot(id, sess)
		return nil
	})
	if err != nil {
		fail(c, sessionError(id, err))
		return
	}

	s.metrics.IncrementSessionStarted()
	s.logger.QuizLogger("started", id, string(state.Phase), state.Progress.Answered, state.Progress.Total)
	c.JSON(http.StatusOK, state)
}

// @Summary Drop a quiz session
// @Tags quiz
// @Param id path string true "Session id"
// @Success 204
// @Router /quiz/sessions/{id} [delete]
func (s *Server) deleteSession(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}

	if err := s.sessions.Delete(id); err != nil {
		fail(c, sessionError(id, err))
		return
	}

	s.logger.QuizLogger("deleted", id, "", 0, 0)
	c.Status(http.StatusNoContent)
}
