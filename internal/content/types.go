package content

import (
	"github.com/ZanzyTHEbar/election-affinity/internal/affinity"
)

// Candidate is a person running for office.
type Candidate struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	PartySlug string   `json:"party"`
	Role      string   `json:"role"`
	Photo     string   `json:"photo,omitempty"`
	Bio       string   `json:"bio,omitempty"`
	Proposals []string `json:"proposals,omitempty"`
}

// TimelineEvent is a dated milestone of the electoral calendar.
type TimelineEvent struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind,omitempty"`
}

// Lesson is a civic-education article.
type Lesson struct {
	Slug    string   `json:"slug"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Body    string   `json:"body"`
	Tags    []string `json:"tags,omitempty"`
}

// Dataset is the complete static content of the site.
type Dataset struct {
	Questions  []affinity.Question `json:"questions"`
	Parties    []affinity.Party    `json:"parties"`
	Candidates []Candidate         `json:"candidates"`
	Timeline   []TimelineEvent     `json:"timeline"`
	Lessons    []Lesson            `json:"lessons"`
}

// Counts summarizes the dataset sizes.
type Counts struct {
	Questions  int `json:"questions"`
	Parties    int `json:"parties"`
	Candidates int `json:"candidates"`
	Timeline   int `json:"timeline"`
	Lessons    int `json:"lessons"`
}

// Counts returns the number of records per collection.
func (d *Dataset) Counts() Counts {
	return Counts{
		Questions:  len(d.Questions),
		Parties:    len(d.Parties),
		Candidates: len(d.Candidates),
		Timeline:   len(d.Timeline),
		Lessons:    len(d.Lessons),
	}
}
