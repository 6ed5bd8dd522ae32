package domain

// ConcernLabel is the canonical mental-health topic of a message.
type ConcernLabel string

const (
	ConcernSafe         ConcernLabel = "safe"
	ConcernSuicidal     ConcernLabel = "suicidal"
	ConcernSelfHarm     ConcernLabel = "self-harm"
	ConcernDepression   ConcernLabel = "depression"
	ConcernAnxiety      ConcernLabel = "anxiety"
	ConcernStress       ConcernLabel = "stress"
	ConcernRelationship ConcernLabel = "relationship"
)

// ConcernLabels is the complete canonical set.
func ConcernLabels() []ConcernLabel {
	return []ConcernLabel{
		ConcernSafe, ConcernSuicidal, ConcernSelfHarm, ConcernDepression,
		ConcernAnxiety, ConcernStress, ConcernRelationship,
	}
}

// Valid reports whether l is in the canonical set.
func (l ConcernLabel) Valid() bool {
	switch l {
	case ConcernSafe, ConcernSuicidal, ConcernSelfHarm, ConcernDepression,
		ConcernAnxiety, ConcernStress, ConcernRelationship:
		return true
	}
	return false
}

// Concern is a classified concern and its confidence in [0,1].
type Concern struct {
	Label      ConcernLabel `json:"label"`
	Confidence float64      `json:"confidence"`
}

// NoConcern is the fallback when no classifier is available or the text is empty.
var NoConcern = Concern{Label: ConcernSafe, Confidence: 0}
