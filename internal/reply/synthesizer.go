// Package reply picks the bot's answer from a fixed template set using a
// first-match-wins rule cascade.
package reply

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonesrussell/north-cloud/triage/internal/domain"
)

// Input is everything a rule may look at.
type Input struct {
	Text     string
	Severity domain.Severity
	Concern  domain.Concern
	Entities []domain.Entity
}

// Rule renders a reply when Match holds.
type Rule struct {
	Name   string
	Match  func(Input) bool
	Render func(Input) string
}

// Decision is the chosen reply and the rule that chose it.
type Decision struct {
	Text string
	Rule string
}

// Rule names that callers may want to recognize.
const (
	RuleEmpty   = "empty"
	RuleCrisis  = "crisis"
	RuleDefault = "default"
)

// Synthesizer is immutable after construction and safe for concurrent use.
type Synthesizer struct {
	rules []Rule
}

// Option configures a Synthesizer.
type Option func(*settings)

type settings struct {
	crisisReply string
}

// WithCrisisReply replaces the crisis resource message, e.g. with a local
// helpline. Blank keeps the default.
func WithCrisisReply(msg string) Option {
	return func(s *settings) {
		if strings.TrimSpace(msg) != "" {
			s.crisisReply = msg
		}
	}
}

// New builds the cascade.
func New(opts ...Option) *Synthesizer {
	s := settings{crisisReply: DefaultCrisisReply}
	for _, opt := range opts {
		opt(&s)
	}

	var rules []Rule
	rules = append(rules,
		Rule{Name: RuleEmpty, Match: func(in Input) bool { return isBlank(in.Text) }, Render: constant(emptyReply)},
		Rule{Name: RuleCrisis, Match: func(in Input) bool { return in.Severity == domain.SeverityImminent }, Render: constant(s.crisisReply)},
	)
	rules = append(rules, concernRules()...)
	rules = append(rules, entityRules()...)
	rules = append(rules, moodRules()...)
	rules = append(rules, Rule{Name: RuleDefault, Match: func(Input) bool { return true }, Render: constant(defaultReply)})

	return &Synthesizer{rules: rules}
}

// Reply returns the reply text for in.
func (s *Synthesizer) Reply(in Input) string {
	return s.Decide(in).Text
}

// Decide evaluates the cascade. The last rule always matches.
func (s *Synthesizer) Decide(in Input) Decision {
	for _, r := range s.rules {
		if r.Match(in) {
			return Decision{Text: r.Render(in), Rule: r.Name}
		}
	}
	return Decision{Text: defaultReply, Rule: RuleDefault}
}

// RuleNames lists the cascade in evaluation order.
func (s *Synthesizer) RuleNames() []string {
	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = r.Name
	}
	return names
}

func concernRules() []Rule {
	above := func(label domain.ConcernLabel, threshold float64) func(Input) bool {
		return func(in Input) bool { return in.Concern.Label == label && in.Concern.Confidence > threshold }
	}

	return []Rule{
		{Name: "concern_suicidal", Match: above(domain.ConcernSuicidal, 0.7), Render: constant(suicidalReply)},
		{Name: "concern_self_harm", Match: above(domain.ConcernSelfHarm, 0.7), Render: constant(selfHarmReply)},
		{Name: "concern_depression", Match: above(domain.ConcernDepression, 0.6), Render: constant(depressionReply)},
		{Name: "concern_anxiety", Match: above(domain.ConcernAnxiety, 0.6), Render: constant(anxietyReply)},
		{Name: "concern_stress", Match: above(domain.ConcernStress, 0.6), Render: constant(stressReply)},
		{Name: "concern_relationship", Match: above(domain.ConcernRelationship, 0.6), Render: func(in Input) string {
			names := uniqueFold(domain.TextsWithLabel(in.Entities, domain.LabelPerson))
			if len(names) == 0 {
				return relationshipReply
			}
			return fmt.Sprintf(relationshipNamed, strings.Join(names, ", "))
		}},
	}
}

func entityRules() []Rule {
	rules := make([]Rule, 0, len(entityOrder))
	for _, label := range entityOrder {
		tmpl := entityReplies[label]
		r := Rule{
			Name:   "entity_" + strings.ToLower(label),
			Match:  func(in Input) bool { return domain.HasLabel(in.Entities, label) },
			Render: constant(tmpl),
		}

		switch label {
		case "Work":
			r.Render = interpolate(tmpl, label, " about ")
		case "Family":
			r.Render = interpolate(tmpl, label, " like ")
		}
		rules = append(rules, r)
	}
	return rules
}

func moodRules() []Rule {
	rules := make([]Rule, 0, len(moodGroups))
	for _, g := range moodGroups {
		re := wordsPattern(g.words)
		rules = append(rules, Rule{
			Name:   "mood_" + g.name,
			Match:  func(in Input) bool { return re.MatchString(in.Text) },
			Render: constant(g.reply),
		})
	}
	return rules
}

// interpolate fills the template's %s with the entity texts for label, or
// with nothing when there are none.
func interpolate(tmpl, label, joiner string) func(Input) string {
	return func(in Input) string {
		texts := uniqueFold(domain.TextsWithLabel(in.Entities, label))
		detail := ""
		if len(texts) > 0 {
			detail = joiner + strings.Join(texts, ", ")
		}
		return fmt.Sprintf(tmpl, detail)
	}
}

func wordsPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func constant(s string) func(Input) string {
	return func(Input) string { return s }
}

// uniqueFold drops case-insensitive repeats, keeping first spellings.
func uniqueFold(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		k := strings.ToLower(it)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
