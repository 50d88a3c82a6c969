package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/election-affinity/internal/affinity"
	"github.com/ZanzyTHEbar/election-affinity/internal/content"
	apperrors "github.com/ZanzyTHEbar/election-affinity/internal/errors"
	"github.com/ZanzyTHEbar/election-affinity/internal/security"
)

type partyView struct {
	affinity.Party
	Vector affinity.Vector `json:"vector"`
}

type partyDetail struct {
	partyView
	Candidates []content.Candidate `json:"candidates"`
}

func (s *Server) partyView(p affinity.Party) partyView {
	return partyView{Party: p, Vector: s.engine.Heuristic.PartyVector(p)}
}

// @Summary List parties with their derived ideology vectors
// @Tags content
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /parties [get]
func (s *Server) listParties(c *gin.Context) {
	parties := make([]partyView, 0, len(s.dataset.Parties))
	for _, p := range s.dataset.Parties {
		parties = append(parties, s.partyView(p))
	}
	c.JSON(http.StatusOK, gin.H{"parties": parties})
}

// @Summary Get a party and its candidates
// @Tags content
// @Produce json
// @Param slug path string true "Party slug"
// @Router /parties/{slug} [get]
func (s *Server) getParty(c *gin.Context) {
	slug := c.Param("slug")
	if !security.ValidIdentifier(slug) {
		fail(c, apperrors.NewValidationError("Invalid party slug", slug))
		return
	}

	p, ok := s.dataset.PartyBySlug(slug)
	if !ok {
		fail(c, apperrors.NewNotFoundError("party", slug))
		return
	}

	c.JSON(http.StatusOK, partyDetail{
		partyView:  s.partyView(p),
		Candidates: s.dataset.CandidatesByParty(slug),
	})
}

// @Summary List candidates, optionally filtered by party
// @Tags content
// @Produce json
// @Param party query string false "Party slug"
// @Router /candidates [get]
func (s *Server) listCandidates(c *gin.Context) {
	party := c.Query("party")
	if party == "" {
		c.JSON(http.StatusOK, gin.H{"candidates": s.dataset.Candidates})
		return
	}
	if !security.ValidIdentifier(party) {
		fail(c, apperrors.NewValidationError("Invalid party slug", party))
		return
	}

	c.JSON(http.StatusOK, gin.H{"candidates": s.dataset.CandidatesByParty(party)})
}

// @Summary Get a candidate
// @Tags content
// @Produce json
// @Param id path string true "Candidate id"
// @Router /candidates/{id} [get]
func (s *Server) getCandidate(c *gin.Context) {
	id := c.Param("id")
	if !security.ValidIdentifier(id) {
		fail(c, apperrors.NewValidationError("Invalid candidate id", id))
		return
	}

	candidate, ok := s.dataset.CandidateByID(id)
	if !ok {
		fail(c, apperrors.NewNotFoundError("candidate", id))
		return
	}
	c.JSON(http.StatusOK, candidate)
}

// @Summary Electoral calendar sorted by date
// @Tags content
// @Produce json
// @Router /timeline [get]
func (s *Server) timeline(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"events": s.dataset.TimelineSorted()})
}

// @Summary List civic education lessons
// @Tags content
// @Produce json
// @Router /lessons [get]
func (s *Server) listLessons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"lessons": s.dataset.Lessons})
}

// @Summary Get a lesson
// @Tags content
// @Produce json
// @Param slug path string true "Lesson slug"
// @Router /lessons/{slug} [get]
func (s *Server) getLesson(c *gin.Context) {
	slug := c.Param("slug")
	if !security.ValidIdentifier(slug) {
		fail(c, apperrors.NewValidationError("Invalid lesson slug", slug))
		return
	}

	lesson, ok := s.dataset.LessonBySlug(slug)
	if !ok {
		fail(c, apperrors.NewNotFoundError("lesson", slug))
		return
	}
	c.JSON(http.StatusOK, lesson)
}
