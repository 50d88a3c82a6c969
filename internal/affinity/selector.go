package affinity

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Selector picks and orders the questions for one quiz run.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector uses rng for every shuffle. A nil rng is seeded from the clock.
func NewSelector(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{rng: rng}
}

// Select returns the questions to present. With max <= 0 or max >= len(bank)
// it is a shuffle of the whole bank. Otherwise the axis champions are always
// kept, the remaining slots are sampled at random and the final selection is
// shuffled. bank itself is never reordered.
func (s *Selector) Select(bank []Question, max int) []Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	if max <= 0 || max >= len(bank) {
		out := append([]Question(nil), bank...)
		s.shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}

	picked := championIndexes(bank)
	if len(picked) > max {
		picked = picked[:max]
	}

	taken := make(map[int]bool, len(picked))
	for _, i := range picked {
		taken[i] = true
	}
	rest := make([]int, 0, len(bank)-len(picked))
	for i := range bank {
		if !taken[i] {
			rest = append(rest, i)
		}
	}
	s.shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	picked = append(picked, rest[:max-len(picked)]...)

	out := make([]Question, len(picked))
	for i, idx := range picked {
		out[i] = bank[idx]
	}
	s.shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Fisher-Yates
func (s *Selector) shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		swap(i, j)
	}
}

// AxisChampions returns, per axis and without duplicates, the question with
// the largest absolute weight on that axis. Axes where every weight is 0
// have no champion.
func AxisChampions(bank []Question) []Question {
	idx := championIndexes(bank)
	out := make([]Question, len(idx))
	for i, j := range idx {
		out[i] = bank[j]
	}
	return out
}

func championIndexes(bank []Question) []int {
	var out []int
	seen := make(map[int]bool, len(Axes))
	for _, axis := range Axes {
		best, bestWeight := -1, 0.0
		for i, q := range bank {
			if w := math.Abs(q.Axis.Weight(axis)); w > bestWeight {
				best, bestWeight = i, w
			}
		}
		if best >= 0 && !seen[best] {
			seen[best] = true
			out = append(out, best)
		}
	}
	return out
}
