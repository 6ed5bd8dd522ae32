package severity

// Crisis phrase lists. A message containing any of them, after folding, is
// IMMINENT regardless of its sentiment. Matching is by substring, so "harm"
// also catches "harmful".
//
// Everyday mood words ("stressed", "anxious", "overwhelmed") are left to the
// polarity and concern rules.
var (
	imminentPhrases = []string{
		"kill myself", "end my life", "suicide", "want to die",
		"not want to live", "end it all", "better off dead",
		"no reason to live", "cant go on", "i want to end it",
		"harm to myself", "harm", "dark thoughts", "suicidal",
		"ending it all", "no point living", "give up",
	}

	selfHarmPhrases = []string{
		"cut myself", "self harm", "hurt myself", "self injury",
		"bleeding myself", "burn myself", "self destructive",
		"cutting", "self-harm", "hurting myself",
	}

	distressPhrases = []string{
		"hopeless", "helpless", "worthless", "empty inside",
		"cant cope", "dont want to wake up", "tired of living",
		"burned out", "cant take it", "cant do this", "losing control",
	}
)

// CrisisPhrases returns the union of the imminent-risk, self-harm and
// generalized-distress lists.
func CrisisPhrases() []string {
	out := make([]string, 0, len(imminentPhrases)+len(selfHarmPhrases)+len(distressPhrases))
	out = append(out, imminentPhrases...)
	out = append(out, selfHarmPhrases...)
	out = append(out, distressPhrases...)
	return out
}
