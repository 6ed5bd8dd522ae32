package extraction

import (
	"regexp"
	"strings"
)

// Category is a keyword topic and its trigger terms. Terms are tried in
// order and the first hit wins.
type Category struct {
	Name  string
	Label string
	Terms []string
}

// Categories is the keyword lexicon in evaluation order. Terms may repeat
// across categories ("bro", "career", "ptsd") and each category reports
// its own hit.
var Categories = []Category{
	{Name: "work", Label: "Work", Terms: []string{
		"work", "job", "career", "boss", "colleague", "office", "employment", "workplace",
		"unemployment", "job stress", "job pressure", "work stress", "work pressure", "burnout",
	}},
	{Name: "school", Label: "School", Terms: []string{
		"school", "college", "university", "exam", "test", "homework", "studies", "academic",
		"grades", "gpa", "professor", "teacher", "class", "assignment", "project", "thesis",
		"dissertation", "student", "student life", "school stress", "academic pressure",
	}},
	{Name: "family", Label: "Family", Terms: []string{
		"family", "parent", "mother", "father", "sibling", "child", "mom", "dad", "brother",
		"sister", "relative", "sista", "bro", "cousin",
	}},
	{Name: "relationship", Label: "Relationship", Terms: []string{
		"partner", "boyfriend", "girlfriend", "spouse", "relationship", "dating", "marriage",
		"divorce", "breakup", "ex", "significant other", "fiance", "fiancee", "lover", "hubby",
		"wifey", "husband", "wife", "gf", "bf", "romantic",
	}},
	{Name: "friends", Label: "Friends", Terms: []string{
		"friend", "friends", "friendship", "buddy", "pal", "social circle", "companions", "mate",
		"bff", "bestie", "best friend", "close friend", "close friends", "friend group", "bro",
	}},
	{Name: "social", Label: "Social", Terms: []string{
		"social", "social life", "isolation", "lonely", "alone", "isolated",
	}},
	{Name: "health", Label: "Health", Terms: []string{
		"health", "doctor", "therapy", "medication", "treatment", "hospital", "clinic", "illness",
		"sick", "chronic", "condition", "disorder", "disease", "physical health",
		"mental health treatment", "therapy sessions", "therapist", "psychiatrist",
	}},
	{Name: "financial", Label: "Financial", Terms: []string{
		"money", "financial", "bill", "debt", "expensive", "cost", "payment", "salary", "income",
		"expenses", "budget", "savings", "financial stress", "financial pressure", "broke",
		"poverty", "unemployed", "unemployment", "jobless",
	}},
	{Name: "future", Label: "Future", Terms: []string{
		"future", "career", "goals", "dreams", "aspirations", "plans", "uncertain", "uncertainty",
		"unknown", "ambitions", "hopes", "fears about future",
	}},
	{Name: "self_esteem", Label: "Self_Esteem", Terms: []string{
		"confidence", "self-esteem", "self worth", "insecurity", "insecure",
	}},
	{Name: "trauma", Label: "Trauma", Terms: []string{
		"trauma", "abuse", "ptsd", "traumatic", "past experiences", "flashbacks", "nightmares",
		"assault", "harassment", "victim", "survivor", "molestation", "rape", "childhood trauma",
	}},
	{Name: "grief", Label: "Grief", Terms: []string{
		"grief", "loss", "mourning", "bereavement", "died", "passed away", "funeral",
		"loss of loved one", "loss of family member", "loss of friend",
	}},
	{Name: "substance", Label: "Substance", Terms: []string{
		"alcohol", "drugs", "substance", "addiction", "drink", "smoke", "smoking", "drug use",
		"rehab", "detox", "substance abuse", "alcoholism", "drug addiction", "overdose",
		"cutting", "burning",
	}},
	{Name: "mental_health", Label: "Mental_Health", Terms: []string{
		"depression", "anxiety", "stress", "panic attack", "mental health", "bipolar",
		"schizophrenia", "ocd", "ptsd", "adhd", "autism", "eating disorder", "self-harm",
		"suicidal thoughts", "cutting", "burning", "sh",
	}},
	{Name: "emotions", Label: "Emotions", Terms: []string{
		"anger", "frustration", "sadness", "loneliness", "fear", "guilt", "shame", "jealousy",
		"envy", "resentment", "grief", "disappointment", "hopelessness", "helplessness",
		"overwhelmed", "numb",
	}},
}

type compiledCategory struct {
	label    string
	patterns []*regexp.Regexp
}

// compileLexicon builds one case-insensitive, word-bounded pattern per term.
func compileLexicon(categories []Category) []compiledCategory {
	out := make([]compiledCategory, 0, len(categories))
	for _, c := range categories {
		cc := compiledCategory{label: c.Label, patterns: make([]*regexp.Regexp, 0, len(c.Terms))}
		for _, term := range c.Terms {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			cc.patterns = append(cc.patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(term)+`\b`))
		}
		out = append(out, cc)
	}
	return out
}
