package alerts

import (
	"strings"

	"golang.org/x/text/cases"
)

// normalizeText folds case and collapses runs of whitespace so that
// "FREE  Robux" and "free robux" compare equal. A Caser is stateful, so
// each call builds its own.
func normalizeText(s string) string {
	folded := cases.Fold().String(s)
	return strings.Join(strings.Fields(folded), " ")
}

// MatchRiskKeywords returns the keywords found in a group's name and
// description. Matching is case-insensitive substring search over
// name + " " + description. Keywords are returned in configured order and
// spelling, each at most once; blank keywords never match.
func MatchRiskKeywords(name, description string, keywords []string) []string {
	text := normalizeText(name + " " + description)
	if text == "" {
		return nil
	}

	var matched []string
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		needle := normalizeText(kw)
		if needle == "" || seen[needle] {
			continue
		}
		if strings.Contains(text, needle) {
			seen[needle] = true
			matched = append(matched, kw)
		}
	}
	return matched
}
