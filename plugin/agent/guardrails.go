package agent

import (
	"regexp"
	"strings"
)

// Injection phrase shapes checked against the latest user message before the
// model or any tool runs. Alternation-combined, case-insensitive; each entry
// is a shape, not an exact string.
var injectionPatterns = []string{
	`ignore\s+(previous|above|all)\s+(instructions|prompts)`,
	`you\s+are\s+now\s+`,
	`system\s*:\s*`,
	`<\s*system\s*>`,
	`pretend\s+you\s+are`,
	`forget\s+(everything|your\s+instructions)`,
	`new\s+instructions?\s*:`,
}

var injectionRe = regexp.MustCompile(`(?i)` + strings.Join(injectionPatterns, "|"))

// First-person completion-claim phrases grouped by action kind. The output
// guardrail trips when the final text contains a phrase whose kind is absent
// from the turn ledger. Phrase-based, not semantic: unusual phrasings slip
// through and truthful claims phrased oddly may trip; both are accepted.
var actionClaims = []struct {
	kind    ActionKind
	phrases []string
}{
	{ActionCreated, []string{"i created", "i've created", "i added", "i've added", "done! i created"}},
	{ActionCompleted, []string{"i completed", "i've completed", "i marked", "i've marked"}},
	{ActionDeleted, []string{"i deleted", "i've deleted", "i removed", "i've removed"}},
	{ActionUpdated, []string{"i updated", "i've updated", "i renamed", "i've renamed"}},
}

// CheckInput reports whether the user message looks like a prompt-injection
// attempt.
func CheckInput(text string) bool {
	return injectionRe.MatchString(text)
}

// CheckOutput scans the final text for completion claims not backed by the
// ledger. It returns the first unbacked kind and whether the tripwire fired.
func CheckOutput(text string, tc *TurnContext) (ActionKind, bool) {
	lower := strings.ToLower(text)
	for _, claim := range actionClaims {
		for _, phrase := range claim.phrases {
			if strings.Contains(lower, phrase) && !tc.HasKind(claim.kind) {
				return claim.kind, true
			}
		}
	}
	return "", false
}
