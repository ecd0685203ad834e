package installer

import "strings"

var (
	startKeywords   = []string{"starting", "installing", "installiere", "prüfe", "erstelle", "configuring", "konfiguriere"}
	successKeywords = []string{"complete", "success", "installed", "done", "erfolgreich", "abgeschlossen", "installiert"}
	failureKeywords = []string{"failed", "error", "fehler", "fehlgeschlagen"}
)

// StepTransition is one inferred status change.
type StepTransition struct {
	Index  int
	Status StepStatus
}

// InferSteps derives step transitions from one classified message. A step
// matches when its display name occurs in the message; the keyword groups
// are then checked in start, success, failure order. Every matching step is
// reported, in registry order. The extra component step is never inferred.
//
// The rule is substring based and can match unrelated lines that happen to
// share words with a step name.
func InferSteps(message string) []StepTransition {
	msg := strings.ToLower(message)

	var out []StepTransition
	for i, def := range Registry {
		if def.Key == ExtraComponentKey {
			continue
		}
		if !strings.Contains(msg, strings.ToLower(def.Name)) {
			continue
		}
		switch {
		case containsAny(msg, startKeywords):
			out = append(out, StepTransition{Index: i, Status: StepRunning})
		case containsAny(msg, successKeywords):
			out = append(out, StepTransition{Index: i, Status: StepSuccess})
		case containsAny(msg, failureKeywords):
			out = append(out, StepTransition{Index: i, Status: StepError})
		}
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
