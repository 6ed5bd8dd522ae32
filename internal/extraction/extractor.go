// Package extraction finds named entities and topic keywords in a message
// using a named-entity model, a keyword lexicon and a capitalization
// heuristic.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/domain"
)

// Pass names, used in logs and the degraded list.
const (
	PassNER     = "ner"
	PassKeyword = "keyword"
	PassPattern = "pattern"
)

// Result is the concatenated output of all passes: model entities first,
// then keywords, then capitalized names. Overlaps between passes are kept.
type Result struct {
	Entities []domain.Entity
	// Degraded names the passes that failed and contributed nothing.
	Degraded []string
}

// Extractor runs the three passes. It is safe for concurrent use.
type Extractor struct {
	ner     Recognizer
	lexicon []compiledCategory
	log     logger.Logger
}

// New returns an Extractor. A nil recognizer disables the model pass.
func New(ner Recognizer, log logger.Logger) *Extractor {
	if ner == nil {
		ner = NullRecognizer{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Extractor{ner: ner, lexicon: compileLexicon(Categories), log: log}
}

// Extract never fails: a failing pass is logged and contributes nothing.
func (e *Extractor) Extract(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Entities: []domain.Entity{}}
	}

	res := Result{Entities: make([]domain.Entity, 0)}
	collect := func(pass string, fn func() ([]domain.Entity, error)) {
		found, err := runPass(fn)
		if err != nil {
			res.Degraded = append(res.Degraded, pass)
			e.log.Warn("Entity extraction pass failed",
				logger.String("pass", pass),
				logger.String("model", "ner"),
				logger.Error(err),
			)
			return
		}
		res.Entities = append(res.Entities, found...)
	}

	collect(PassNER, func() ([]domain.Entity, error) { return e.modelEntities(ctx, text) })
	collect(PassKeyword, func() ([]domain.Entity, error) { return e.keywordEntities(text), nil })
	collect(PassPattern, func() ([]domain.Entity, error) { return patternEntities(text), nil })

	return res
}

// runPass turns a panic inside a pass into an error so one broken pass
// cannot take down the request.
func runPass(fn func() ([]domain.Entity, error)) (found []domain.Entity, err error) {
	defer func() {
		if r := recover(); r != nil {
			found, err = nil, fmt.Errorf("pass panicked: %v", r)
		}
	}()
	return fn()
}

func (e *Extractor) modelEntities(ctx context.Context, text string) ([]domain.Entity, error) {
	raw, err := e.ner.Recognize(ctx, text)
	if errors.Is(err, ErrNoModel) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]domain.Entity, 0, len(raw))
	for _, r := range raw {
		if !Allowed(r.Type) || strings.TrimSpace(r.Text) == "" {
			continue
		}
		out = append(out, domain.Entity{Text: r.Text, Type: domain.EntityModelNER, Label: DisplayLabel(r.Type)})
	}
	return out, nil
}

// keywordEntities emits at most one entity per lexicon category, using the
// text as the user wrote it.
func (e *Extractor) keywordEntities(text string) []domain.Entity {
	var out []domain.Entity
	for _, c := range e.lexicon {
		for _, re := range c.patterns {
			if m := re.FindString(text); m != "" {
				out = append(out, domain.Entity{Text: m, Type: domain.EntityKeyword, Label: c.label})
				break
			}
		}
	}
	return out
}

func patternEntities(text string) []domain.Entity {
	names := capitalizedNames(text)
	out := make([]domain.Entity, 0, len(names))
	for _, n := range names {
		out = append(out, domain.Entity{Text: n, Type: domain.EntityPattern, Label: domain.LabelPerson})
	}
	return out
}
