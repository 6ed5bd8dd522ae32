// Package severity assigns a triage tier to a message from its text,
// polarity and concern label.
package severity

import (
	"strings"

	"github.com/jonesrussell/north-cloud/triage/internal/domain"
)

// Polarity cut-offs.
const (
	DistressedPolarity = -0.6
	ElevatedPolarity   = -0.3
	ConcernPolarity    = -0.1
)

// Input is what a rule sees.
type Input struct {
	Text     string
	Polarity float64
	Concern  domain.ConcernLabel
}

// Rule maps a predicate to a tier. Rules are evaluated in order and the
// first match wins.
type Rule struct {
	Name  string
	Match func(Input) bool
	Tier  domain.Severity
}

// Decision is a resolved tier and the rule that produced it.
type Decision struct {
	Severity domain.Severity
	Rule     string
}

const (
	RuleEmpty   = "empty_text"
	RuleDefault = "default"
)

// Resolver evaluates the severity cascade.
type Resolver struct {
	scanner *Scanner
	rules   []Rule
}

// NewResolver uses the built-in crisis phrase lists.
func NewResolver() *Resolver {
	return NewResolverWithScanner(NewScanner(CrisisPhrases()))
}

// NewResolverWithScanner uses a caller-built scanner.
func NewResolverWithScanner(scanner *Scanner) *Resolver {
	return &Resolver{scanner: scanner, rules: defaultRules(scanner)}
}

func defaultRules(scanner *Scanner) []Rule {
	return []Rule{
		{
			Name:  "crisis_keyword",
			Match: func(in Input) bool { return scanner.Contains(in.Text) },
			Tier:  domain.SeverityImminent,
		},
		{
			Name:  "polarity_distressed",
			Match: func(in Input) bool { return in.Polarity < DistressedPolarity },
			Tier:  domain.SeverityDistressed,
		},
		{
			Name:  "polarity_elevated",
			Match: func(in Input) bool { return in.Polarity < ElevatedPolarity },
			Tier:  domain.SeverityElevated,
		},
		{
			Name: "concern_elevated",
			Match: func(in Input) bool {
				return (in.Concern == domain.ConcernStress || in.Concern == domain.ConcernRelationship) &&
					in.Polarity < ConcernPolarity
			},
			Tier: domain.SeverityElevated,
		},
	}
}

// Resolve returns the tier for one message.
func (r *Resolver) Resolve(text string, polarity float64, concern domain.ConcernLabel) domain.Severity {
	return r.Decide(Input{Text: text, Polarity: polarity, Concern: concern}).Severity
}

// Decide is Resolve plus the name of the deciding rule.
func (r *Resolver) Decide(in Input) Decision {
	if strings.TrimSpace(in.Text) == "" {
		return Decision{Severity: domain.SeveritySafe, Rule: RuleEmpty}
	}
	for _, rule := range r.rules {
		if rule.Match(in) {
			return Decision{Severity: rule.Tier, Rule: rule.Name}
		}
	}
	return Decision{Severity: domain.SeveritySafe, Rule: RuleDefault}
}

// Rules returns the cascade in evaluation order.
func (r *Resolver) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}
