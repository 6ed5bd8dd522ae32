package extraction

import (
	"context"
	"errors"
)

// RawEntity is a named-entity model span before filtering.
type RawEntity struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Recognizer is a named-entity model.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]RawEntity, error)
}

// ErrNoModel is returned by NullRecognizer.
var ErrNoModel = errors.New("no named-entity model configured")

// NullRecognizer stands in when no model is deployed. The NER pass then
// yields nothing.
type NullRecognizer struct{}

func (NullRecognizer) Recognize(context.Context, string) ([]RawEntity, error) {
	return nil, ErrNoModel
}

// nerLabels is both the type allow-list and the display label table.
var nerLabels = map[string]string{
	"PERSON": "Person",
	"ORG":    "Organization",
	"GPE":    "Location",
	"EVENT":  "Event",
	"DATE":   "Date",
	"TIME":   "Time",
}

// Allowed reports whether a model entity type is kept.
func Allowed(entityType string) bool {
	_, ok := nerLabels[entityType]
	return ok
}

// DisplayLabel maps a model entity type to its display label, or returns
// the type unchanged when it has none.
func DisplayLabel(entityType string) string {
	if label, ok := nerLabels[entityType]; ok {
		return label
	}
	return entityType
}
