package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/election-affinity/internal/affinity"
	apperrors "github.com/ZanzyTHEbar/election-affinity/internal/errors"
	"github.com/ZanzyTHEbar/election-affinity/internal/share"
)

type scoredAnswer struct {
	QuestionID string           `json:"question_id"`
	Answer     *affinity.Answer `json:"answer"`
}

type scoreRequest struct {
	Answers []scoredAnswer `json:"answers"`
}

// resolve pairs every answer with its question. Each question may be
// answered once.
func (s *Server) resolve(req scoreRequest) ([]affinity.Question, []affinity.Answer, error) {
	if len(req.Answers) == 0 {
		return nil, nil, apperrors.NewValidationError("answers must not be empty")
	}

	byID := s.dataset.QuestionsByID()
	seen := make(map[string]bool, len(req.Answers))
	problems := map[string]string{}

	questions := make([]affinity.Question, 0, len(req.Answers))
	answers := make([]affinity.Answer, 0, len(req.Answers))
	for i, a := range req.Answers {
		field := fmt.Sprintf("answers[%d]", i)
		q, ok := byID[a.QuestionID]
		switch {
		case a.QuestionID == "":
			problems[field] = "question_id is required"
		case !ok:
			problems[field] = fmt.Sprintf("unknown question %q", a.QuestionID)
		case seen[a.QuestionID]:
			problems[field] = fmt.Sprintf("question %q answered more than once", a.QuestionID)
		case a.Answer == nil:
			problems[field] = "answer is required"
		default:
			seen[a.QuestionID] = true
			questions = append(questions, q)
			answers = append(answers, *a.Answer)
		}
	}

	if len(problems) > 0 {
		return nil, nil, apperrors.NewValidationErrorWithMap(problems)
	}
	return questions, answers, nil
}

// @Summary Score a complete answer sheet without a session
// @Tags affinity
// @Accept json
// @Produce json
// @Param body body scoreRequest true "Answers keyed by question id"
// @Router /affinity/score [post]
func (s *Server) score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.NewValidationError("Invalid request body", err.Error()))
		return
	}

	questions, answers, err := s.resolve(req)
	if err != nil {
		fail(c, err)
		return
	}

	start := time.Now()
	outcome, err := s.engine.Score(questions, answers)
	if err != nil {
		fail(c, err)
		return
	}

	view := resultView{Outcome: &outcome}
	s.withShare(&view, len(questions))
	s.recordOutcome("score", &outcome, len(questions), time.Since(start))

	c.JSON(http.StatusOK, view)
}

// @Summary Re-rank a shared result against the current parties
// @Tags affinity
// @Produce json
// @Param token path string true "Share token"
// @Router /results/{token} [get]
func (s *Server) sharedResult(c *gin.Context) {
	claims, err := s.signer.Parse(c.Param("token"))
	switch {
	case err == nil:
	case errors.Is(err, share.ErrExpiredToken):
		fail(c, apperrors.NewValidationError("Share link has expired"))
		return
	default:
		fail(c, apperrors.NewValidationError("Invalid share link"))
		return
	}

	start := time.Now()
	outcome := s.engine.Summarize(claims.Vector())
	s.logger.ResultLogger("shared", bestSlug(&outcome), bestPercentage(&outcome), claims.QuestionCount, time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"outcome":        outcome,
		"question_count": claims.QuestionCount,
		"shared_at":      claims.IssuedAt,
		"expires_at":     claims.ExpiresAt,
	})
}

func (s *Server) recordOutcome(source string, outcome *affinity.Outcome, questionCount int, took time.Duration) {
	if outcome == nil {
		return
	}
	s.metrics.RecordCompletion(bestSlug(outcome))
	s.logger.ResultLogger(source, bestSlug(outcome), bestPercentage(outcome), questionCount, took)
}

func bestSlug(o *affinity.Outcome) string {
	if o.BestMatch == nil {
		return ""
	}
	return o.BestMatch.Party.Slug
}

func bestPercentage(o *affinity.Outcome) int {
	if o.BestMatch == nil {
		return 0
	}
	return o.BestMatch.Percentage
}
