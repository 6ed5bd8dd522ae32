package domain

// EntityType records which extraction strategy produced an entity.
type EntityType string

const (
	EntityModelNER EntityType = "MODEL_NER"
	EntityKeyword  EntityType = "KEYWORD"
	EntityPattern  EntityType = "PATTERN"
)

// Entity is a span or topic detected in a user message.
type Entity struct {
	Text  string     `json:"text"`  // surface form as written
	Type  EntityType `json:"type"`  // extraction strategy
	Label string     `json:"label"` // display category, e.g. "Person", "Work"
}

// LabelPerson is shared by the NER and capitalization passes.
const LabelPerson = "Person"

// TextsWithLabel returns the texts of entities carrying label, in order.
func TextsWithLabel(entities []Entity, label string) []string {
	var out []string
	for _, e := range entities {
		if e.Label == label {
			out = append(out, e.Text)
		}
	}
	return out
}

// HasLabel reports whether any entity carries label.
func HasLabel(entities []Entity, label string) bool {
	for _, e := range entities {
		if e.Label == label {
			return true
		}
	}
	return false
}
