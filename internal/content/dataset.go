package content

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/election-affinity/internal/affinity"
)

// ErrInvalidContent wraps every validation failure of the dataset.
var ErrInvalidContent = errors.New("invalid content")

// Validate checks the dataset for configuration faults. Out of range question
// weights are clamped in place and only logged.
func (d *Dataset) Validate() error {
	if len(d.Questions) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidContent, affinity.ErrEmptyQuestionBank)
	}
	if len(d.Parties) == 0 {
		return fmt.Errorf("%w: party list is empty", ErrInvalidContent)
	}

	questionIDs := make(map[string]bool, len(d.Questions))
	for i := range d.Questions {
		q := &d.Questions[i]
		if strings.TrimSpace(q.ID) == "" {
			return fmt.Errorf("%w: question %d has no id", ErrInvalidContent, i)
		}
		if questionIDs[q.ID] {
			return fmt.Errorf("%w: duplicate question id %q", ErrInvalidContent, q.ID)
		}
		questionIDs[q.ID] = true

		for axis, w := range q.Axis {
			if w < -1 || w > 1 {
				clamped := min(max(w, -1), 1)
				slog.Warn("Question weight out of range, clamping", "question", q.ID, "axis", axis, "weight", w, "clamped", clamped)
				q.Axis[axis] = clamped
			}
		}
	}

	partySlugs := make(map[string]bool, len(d.Parties))
	for i, p := range d.Parties {
		if strings.TrimSpace(p.Slug) == "" || strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: party %d needs a slug and a name", ErrInvalidContent, i)
		}
		if partySlugs[p.Slug] {
			return fmt.Errorf("%w: duplicate party slug %q", ErrInvalidContent, p.Slug)
		}
		partySlugs[p.Slug] = true
	}

	candidateIDs := make(map[string]bool, len(d.Candidates))
	for _, c := range d.Candidates {
		if candidateIDs[c.ID] {
			return fmt.Errorf("%w: duplicate candidate id %q", ErrInvalidContent, c.ID)
		}
		candidateIDs[c.ID] = true
		if !partySlugs[c.PartySlug] {
			slog.Warn("Candidate references unknown party", "candidate", c.ID, "party", c.PartySlug)
		}
	}

	lessonSlugs := make(map[string]bool, len(d.Lessons))
	for _, l := range d.Lessons {
		if lessonSlugs[l.Slug] {
			return fmt.Errorf("%w: duplicate lesson slug %q", ErrInvalidContent, l.Slug)
		}
		lessonSlugs[l.Slug] = true
	}

	return nil
}

// PartyBySlug finds a party.
func (d *Dataset) PartyBySlug(slug string) (affinity.Party, bool) {
	for _, p := range d.Parties {
		if p.Slug == slug {
			return p, true
		}
	}
	return affinity.Party{}, false
}

// CandidateByID finds a candidate.
func (d *Dataset) CandidateByID(id string) (Candidate, bool) {
	for _, c := range d.Candidates {
		if c.ID == id {
			return c, true
		}
	}
	return Candidate{}, false
}

// CandidatesByParty returns the candidates of a party in dataset order.
func (d *Dataset) CandidatesByParty(slug string) []Candidate {
	out := []Candidate{}
	for _, c := range d.Candidates {
		if c.PartySlug == slug {
			out = append(out, c)
		}
	}
	return out
}

// LessonBySlug finds a civic-education lesson.
func (d *Dataset) LessonBySlug(slug string) (Lesson, bool) {
	for _, l := range d.Lessons {
		if l.Slug == slug {
			return l, true
		}
	}
	return Lesson{}, false
}

// TimelineSorted returns the timeline ordered by date, oldest first.
func (d *Dataset) TimelineSorted() []TimelineEvent {
	out := append([]TimelineEvent(nil), d.Timeline...)
	// ISO dates sort lexically
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

// QuestionsByID indexes the question bank.
func (d *Dataset) QuestionsByID() map[string]affinity.Question {
	out := make(map[string]affinity.Question, len(d.Questions))
	for _, q := range d.Questions {
		out[q.ID] = q
	}
	return out
}
