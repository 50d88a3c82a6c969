package affinity

import (
	"fmt"
	"regexp"
	"strings"
)

// Scope selects the text a rule is matched against.
type Scope int

const (
	// ScopeIdeology matches the ideology label only.
	ScopeIdeology Scope = iota
	// ScopeIdeologyAndValues matches the ideology label joined with the values list.
	ScopeIdeologyAndValues
)

// Rule adds Delta to Axis when Pattern matches the lower-cased party text.
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Axis     Axis
	Delta    float64
	Polarity int
	Scope    Scope
}

// Validate checks that the rule is complete and that Delta agrees with Polarity.
func (r Rule) Validate() error {
	if r.Pattern == nil {
		return fmt.Errorf("%w: %s has no pattern", ErrInvalidRule, r.Name)
	}
	switch r.Axis {
	case AxisEcon, AxisSocial, AxisEnv:
	default:
		return fmt.Errorf("%w: %s targets unknown axis %q", ErrInvalidRule, r.Name, r.Axis)
	}
	switch {
	case r.Polarity > 0 && r.Delta <= 0, r.Polarity < 0 && r.Delta >= 0, r.Polarity == 0:
		return fmt.Errorf("%w: %s delta %.2f contradicts polarity %d", ErrInvalidRule, r.Name, r.Delta, r.Polarity)
	}
	return nil
}

// DefaultRules is the keyword table used for party positions. The deltas were
// tuned by hand; only their signs matter for ranking direction.
var DefaultRules = []Rule{
	{
		Name:     "socialism",
		Pattern:  regexp.MustCompile(`socialis|marxis|comunis|communis`),
		Axis:     AxisEcon,
		Delta:    -0.7,
		Polarity: -1,
		Scope:    ScopeIdeology,
	},
	{
		Name:     "social_democracy",
		Pattern:  regexp.MustCompile(`socialdem|social[- ]dem[oó]cra`),
		Axis:     AxisEcon,
		Delta:    -0.3,
		Polarity: -1,
		Scope:    ScopeIdeology,
	},
	{
		Name:     "free_market",
		Pattern:  regexp.MustCompile(`liberal|libre mercado|free[- ]market|libertari`),
		Axis:     AxisEcon,
		Delta:    0.6,
		Polarity: 1,
		Scope:    ScopeIdeology,
	},
	{
		Name:     "conservative",
		Pattern:  regexp.MustCompile(`conserva|religio|cristian|christian|tradicional|traditional`),
		Axis:     AxisSocial,
		Delta:    0.6,
		Polarity: 1,
		Scope:    ScopeIdeology,
	},
	{
		Name:     "progressive",
		Pattern:  regexp.MustCompile(`progresis|progressiv|izquierda|left[- ]wing`),
		Axis:     AxisSocial,
		Delta:    -0.6,
		Polarity: -1,
		Scope:    ScopeIdeology,
	},
	{
		Name:     "ecology",
		Pattern:  regexp.MustCompile(`ecolog|ambient|environment|clima|verde|green|sostenib|sustainab`),
		Axis:     AxisEnv,
		Delta:    0.6,
		Polarity: 1,
		Scope:    ScopeIdeologyAndValues,
	},
}

// Heuristic derives party vectors from free-text ideology and values.
type Heuristic struct {
	rules []Rule
}

// NewHeuristic validates rules and builds a heuristic. With no rules it uses DefaultRules.
func NewHeuristic(rules ...Rule) (*Heuristic, error) {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	return &Heuristic{rules: append([]Rule(nil), rules...)}, nil
}

// DefaultHeuristic returns a heuristic over DefaultRules.
func DefaultHeuristic() *Heuristic {
	return &Heuristic{rules: append([]Rule(nil), DefaultRules...)}
}

// Rules returns a copy of the rule table.
func (h *Heuristic) Rules() []Rule {
	return append([]Rule(nil), h.rules...)
}

// PartyVector applies every matching rule and clamps each axis to [-1, 1].
func (h *Heuristic) PartyVector(p Party) Vector {
	ideology := strings.ToLower(p.Ideology)
	combined := strings.ToLower(strings.TrimSpace(p.Ideology + " " + strings.Join(p.Values, " ")))

	var v Vector
	for _, r := range h.rules {
		text := ideology
		if r.Scope == ScopeIdeologyAndValues {
			text = combined
		}
		if r.Pattern.MatchString(text) {
			v.add(r.Axis, r.Delta)
		}
	}
	return v.Clamp(-1, 1)
}
