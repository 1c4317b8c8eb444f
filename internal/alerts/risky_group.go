package alerts

import (
	"fmt"

	"github.com/nixlim/game-guardian/internal/events"
)

// riskyGroupRule flags groups whose name or description mentions a
// configured risk keyword.
type riskyGroupRule struct{}

func (riskyGroupRule) Type() Type { return TypeRiskyGroup }

func (riskyGroupRule) Enabled(cfg RuleConfig) bool { return cfg.RiskyGroupEnabled }

func (riskyGroupRule) Check(in input) (*Alert, error) {
	g, ok := in.event.(events.GroupEvent)
	if !ok {
		return nil, nil
	}

	matched := MatchRiskKeywords(g.Name, g.Description, in.cfg.RiskKeywords)
	if len(matched) == 0 {
		return nil, nil
	}

	return newAlert(in, TypeRiskyGroup, SeverityHigh,
		"Joined Potentially Risky Group",
		fmt.Sprintf("%s joined %q which contains keywords associated with scams.", in.child.Name, g.Name),
		RiskyGroupDetails{GroupName: g.Name, Keywords: matched, MemberCount: g.MemberCount},
	), nil
}
