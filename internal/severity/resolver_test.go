package severity_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/severity"
)

func TestResolve_Cascade(t *testing.T) {
	t.Parallel()

	r := severity.NewResolver()

	tests := []struct {
		name     string
		text     string
		polarity float64
		concern  domain.ConcernLabel
		want     domain.Severity
		rule     string
	}{
		{name: "empty", text: "", polarity: -0.9, want: domain.SeveritySafe, rule: severity.RuleEmpty},
		{name: "whitespace only", text: "   \n", polarity: -0.9, want: domain.SeveritySafe, rule: severity.RuleEmpty},
		{name: "calm suicide mention", text: "I want to kill myself", polarity: 0.4, want: domain.SeverityImminent, rule: "crisis_keyword"},
		{name: "uppercase phrase", text: "I feel HOPELESS today", polarity: 0.2, want: domain.SeverityImminent, rule: "crisis_keyword"},
		{name: "curly apostrophe", text: "I can’t go on like this", polarity: 0, want: domain.SeverityImminent, rule: "crisis_keyword"},
		{name: "substring semantics", text: "that was a harmful comment", polarity: 0.1, want: domain.SeverityImminent, rule: "crisis_keyword"},
		{name: "very negative", text: "this is awful", polarity: -0.61, want: domain.SeverityDistressed, rule: "polarity_distressed"},
		{name: "boundary -0.6 is elevated", text: "this is bad", polarity: -0.6, want: domain.SeverityElevated, rule: "polarity_elevated"},
		{name: "negative", text: "this is bad", polarity: -0.31, want: domain.SeverityElevated, rule: "polarity_elevated"},
		{name: "boundary -0.3 falls through", text: "meh", polarity: -0.3, want: domain.SeveritySafe, rule: severity.RuleDefault},
		{name: "stress concern slightly negative", text: "deadlines again", polarity: -0.2, concern: domain.ConcernStress, want: domain.SeverityElevated, rule: "concern_elevated"},
		{name: "relationship concern slightly negative", text: "we argued", polarity: -0.11, concern: domain.ConcernRelationship, want: domain.SeverityElevated, rule: "concern_elevated"},
		{name: "depression concern slightly negative", text: "grey day", polarity: -0.2, concern: domain.ConcernDepression, want: domain.SeveritySafe, rule: severity.RuleDefault},
		{name: "stress concern at boundary", text: "deadlines", polarity: -0.1, concern: domain.ConcernStress, want: domain.SeveritySafe, rule: severity.RuleDefault},
		{name: "exam stress is not a crisis", text: "I'm really stressed about my exam at school", polarity: -0.2, concern: domain.ConcernStress, want: domain.SeverityElevated, rule: "concern_elevated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := r.Decide(severity.Input{Text: tt.text, Polarity: tt.polarity, Concern: tt.concern})
			assert.Equal(t, tt.want, d.Severity)
			assert.Equal(t, tt.rule, d.Rule)
			assert.Equal(t, tt.want, r.Resolve(tt.text, tt.polarity, tt.concern))
		})
	}
}

func TestResolve_CrisisPhrasesAlwaysImminent(t *testing.T) {
	t.Parallel()

	r := severity.NewResolver()
	for _, phrase := range severity.CrisisPhrases() {
		for _, polarity := range []float64{-1, -0.5, 0, 0.5, 1} {
			got := r.Resolve("honestly, "+phrase+" sometimes", polarity, domain.ConcernSafe)
			assert.Equal(t, domain.SeverityImminent, got, "phrase %q polarity %v", phrase, polarity)
		}
	}
}

func TestResolve_DistressedWithoutKeyword(t *testing.T) {
	t.Parallel()

	r := severity.NewResolver()
	for _, p := range []float64{-0.61, -0.8, -1} {
		assert.Equal(t, domain.SeverityDistressed, r.Resolve("today was terrible", p, domain.ConcernAnxiety))
	}
}

func TestScanner_ConcurrentUse(t *testing.T) {
	t.Parallel()

	s := severity.NewScanner(severity.CrisisPhrases())
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				assert.True(t, s.Contains("I feel worthless"))
				assert.False(t, s.Contains("lovely weather"))
			}
		}()
	}
	wg.Wait()
}

func TestScanner_DeduplicatesAndFolds(t *testing.T) {
	t.Parallel()

	s := severity.NewScanner([]string{"Can't Cope", "cant cope", "", "self harm"})
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"cant cope"}, s.Scan("I CAN'T COPE anymore"))
}

func TestFold(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dont want to wake up", severity.Fold("Don’t Want To Wake Up"))
}
