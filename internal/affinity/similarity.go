package affinity

import (
	"math"
	"sort"
)

// Cosine returns dot(a,b)/(|a||b|), or 0 when either vector has zero length.
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	sim := a.Dot(b) / (na * nb)
	if math.IsNaN(sim) {
		return 0
	}
	return clamp(sim, -1, 1)
}

// Percentage maps a similarity in [-1, 1] onto [0, 100].
func Percentage(sim float64) int {
	return int(math.Round(((sim + 1) / 2) * 100))
}

// Rank scores every party against user and sorts by percentage, highest
// first. Ties keep the input order.
func Rank(user Vector, parties []Party, h *Heuristic) []PartyResult {
	results := make([]PartyResult, 0, len(parties))
	for _, p := range parties {
		pv := h.PartyVector(p)
		sim := Cosine(user, pv)
		results = append(results, PartyResult{
			Party:      p,
			Vector:     pv,
			Similarity: sim,
			Percentage: Percentage(sim),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Percentage > results[j].Percentage
	})
	return results
}

// Outcome is the full result of a completed quiz.
type Outcome struct {
	UserVector Vector        `json:"user_vector"`
	Results    []PartyResult `json:"results"`
	BestMatch  *PartyResult  `json:"best_match,omitempty"`
	RunnersUp  []PartyResult `json:"runners_up"`
}

// Summarize picks the best match and up to runnersUp following results.
func Summarize(user Vector, results []PartyResult, runnersUp int) Outcome {
	out := Outcome{
		UserVector: user,
		Results:    results,
		RunnersUp:  []PartyResult{},
	}
	if len(results) == 0 {
		return out
	}

	best := results[0]
	out.BestMatch = &best

	end := 1 + runnersUp
	if runnersUp < 0 || end > len(results) {
		end = len(results)
	}
	out.RunnersUp = append(out.RunnersUp, results[1:end]...)
	return out
}
