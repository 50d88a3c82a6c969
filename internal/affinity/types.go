// Package affinity matches quiz answers to parties on three ideological axes.
package affinity

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Axis is one of the fixed ideological dimensions.
type Axis string

const (
	AxisEcon   Axis = "econ"
	AxisSocial Axis = "social"
	AxisEnv    Axis = "env"
)

// Axes lists every axis in canonical order.
var Axes = []Axis{AxisEcon, AxisSocial, AxisEnv}

// AxisWeights maps an axis to a weight in [-1, 1]. A missing axis weighs 0.
type AxisWeights map[Axis]float64

// Weight returns the weight for axis, 0 when absent.
func (w AxisWeights) Weight(axis Axis) float64 {
	if w == nil {
		return 0
	}
	return w[axis]
}

// UnmarshalJSON decodes weights leniently: malformed values count as 0 and
// unknown axes are dropped.
func (w *AxisWeights) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*w = AxisWeights{}
		return nil
	}

	out := make(AxisWeights, len(Axes))
	for _, axis := range Axes {
		v, ok := raw[string(axis)]
		if !ok {
			continue
		}
		out[axis] = parseWeight(v)
	}
	*w = out
	return nil
}

func parseWeight(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil && isFinite(f) {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && isFinite(f) {
			return f
		}
	}
	return 0
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Question is a single quiz statement with its per-axis weights.
type Question struct {
	ID      string      `json:"id"`
	Text    string      `json:"text"`
	Example string      `json:"example,omitempty"`
	Icon    string      `json:"icon,omitempty"`
	Axis    AxisWeights `json:"axis"`
}

// Answer is the user's stance on a question.
type Answer int

const (
	Disagree Answer = -1
	Neutral  Answer = 0
	Agree    Answer = 1
)

// Valid reports whether a is one of the three accepted values.
func (a Answer) Valid() bool {
	return a == Agree || a == Neutral || a == Disagree
}

func (a Answer) String() string {
	switch a {
	case Agree:
		return "agree"
	case Neutral:
		return "neutral"
	case Disagree:
		return "disagree"
	default:
		return fmt.Sprintf("answer(%d)", int(a))
	}
}

// ParseAnswer accepts the answer names or their numeric values.
func ParseAnswer(s string) (Answer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "agree", "1", "+1":
		return Agree, nil
	case "neutral", "0":
		return Neutral, nil
	case "disagree", "-1":
		return Disagree, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAnswer, s)
}

// UnmarshalJSON accepts either 1/0/-1 or "agree"/"neutral"/"disagree".
func (a *Answer) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		parsed := Answer(n)
		if !parsed.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidAnswer, n)
		}
		*a = parsed
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAnswer, string(data))
	}
	parsed, err := ParseAnswer(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Option is one of the three fixed responses offered for every question.
type Option struct {
	Label string `json:"label"`
	Value Answer `json:"value"`
}

// Options are presented in this order for every question.
var Options = []Option{
	{Label: "Agree", Value: Agree},
	{Label: "Neutral", Value: Neutral},
	{Label: "Disagree", Value: Disagree},
}

// Prompt is the render data for the question currently on screen.
type Prompt struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Example string   `json:"example,omitempty"`
	Icon    string   `json:"icon,omitempty"`
	Options []Option `json:"options"`
	Index   int      `json:"index"`
	Total   int      `json:"total"`
}

// NewPrompt builds render data for q at position index of total.
func NewPrompt(q Question, index, total int) Prompt {
	return Prompt{
		ID:      q.ID,
		Text:    q.Text,
		Example: q.Example,
		Icon:    q.Icon,
		Options: Options,
		Index:   index,
		Total:   total,
	}
}

// Vector is a position in (econ, social, env) space.
type Vector struct {
	Econ   float64 `json:"econ"`
	Social float64 `json:"social"`
	Env    float64 `json:"env"`
}

// Get returns the coordinate for axis.
func (v Vector) Get(axis Axis) float64 {
	switch axis {
	case AxisEcon:
		return v.Econ
	case AxisSocial:
		return v.Social
	case AxisEnv:
		return v.Env
	}
	return 0
}

func (v *Vector) add(axis Axis, delta float64) {
	switch axis {
	case AxisEcon:
		v.Econ += delta
	case AxisSocial:
		v.Social += delta
	case AxisEnv:
		v.Env += delta
	}
}

// Dot returns the dot product of v and o.
func (v Vector) Dot(o Vector) float64 {
	return v.Econ*o.Econ + v.Social*o.Social + v.Env*o.Env
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// IsZero reports whether every coordinate is 0.
func (v Vector) IsZero() bool {
	return v.Econ == 0 && v.Social == 0 && v.Env == 0
}

// Clamp limits every coordinate to [lo, hi] independently.
func (v Vector) Clamp(lo, hi float64) Vector {
	return Vector{
		Econ:   clamp(v.Econ, lo, hi),
		Social: clamp(v.Social, lo, hi),
		Env:    clamp(v.Env, lo, hi),
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Party is a contender in the election. Only Ideology and Values feed scoring.
type Party struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	ShortName   string   `json:"short_name,omitempty"`
	Ideology    string   `json:"ideology,omitempty"`
	Values      []string `json:"values,omitempty"`
	Leader      string   `json:"leader,omitempty"`
	Color       string   `json:"color,omitempty"`
	Logo        string   `json:"logo,omitempty"`
	Website     string   `json:"website,omitempty"`
	Description string   `json:"description,omitempty"`
}

// PartyResult pairs a party with its affinity against a user vector.
type PartyResult struct {
	Party      Party   `json:"party"`
	Vector     Vector  `json:"vector"`
	Similarity float64 `json:"similarity"`
	Percentage int     `json:"percentage"`
}
