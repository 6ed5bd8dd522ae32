package concern

import "github.com/jonesrussell/north-cloud/triage/internal/domain"

// CandidateLabels are the fine-grained categories offered to the zero-shot
// model, in the order they are sent.
var CandidateLabels = []string{
	"suicidal thoughts",
	"self harm",
	"depression",
	"anxiety",
	"stress",
	"relationship issues",
	"family problems",
	"work stress",
	"academic pressure",
	"loneliness",
	"trauma",
	"grief",
	"anger issues",
	"sleep problems",
	"eating disorders",
	"general mental health",
}

// canonical collapses each candidate into the canonical concern set.
var canonical = map[string]domain.ConcernLabel{
	"suicidal thoughts":     domain.ConcernSuicidal,
	"self harm":             domain.ConcernSelfHarm,
	"depression":            domain.ConcernDepression,
	"anxiety":               domain.ConcernAnxiety,
	"stress":                domain.ConcernStress,
	"work stress":           domain.ConcernStress,
	"academic pressure":     domain.ConcernStress,
	"anger issues":          domain.ConcernStress,
	"relationship issues":   domain.ConcernRelationship,
	"family problems":       domain.ConcernRelationship,
	"loneliness":            domain.ConcernDepression,
	"trauma":                domain.ConcernDepression,
	"grief":                 domain.ConcernDepression,
	"eating disorders":      domain.ConcernDepression,
	"sleep problems":        domain.ConcernAnxiety,
	"general mental health": domain.ConcernSafe,
}

// Canonical maps a model label to its canonical concern. Unknown labels
// map to safe.
func Canonical(modelLabel string) domain.ConcernLabel {
	if l, ok := canonical[modelLabel]; ok {
		return l
	}
	return domain.ConcernSafe
}
