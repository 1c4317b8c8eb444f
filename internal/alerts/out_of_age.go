package alerts

import (
	"fmt"

	"github.com/nixlim/game-guardian/internal/events"
)

// outOfAgeRule flags sessions on games rated above the child's age.
// Sessions shorter than the minimum duration are not evaluated at all.
type outOfAgeRule struct{}

func (outOfAgeRule) Type() Type { return TypeOutOfAgeGaming }

func (outOfAgeRule) Enabled(cfg RuleConfig) bool { return cfg.OutOfAgeEnabled }

func (outOfAgeRule) Check(in input) (*Alert, error) {
	s, ok := in.event.(events.PlaySession)
	if !ok || s.DurationMin < in.cfg.OutOfAgeMinDurationMin {
		return nil, nil
	}

	minAge, err := in.cfg.minAgeFor(in.game.AgeRating)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", in.game.ID, err)
	}
	if minAge <= in.child.Age {
		return nil, nil
	}

	return newAlert(in, TypeOutOfAgeGaming, SeverityMedium,
		"Playing Above Age Rating",
		fmt.Sprintf("%s (age %d) played %q which has a %s rating for %d minutes.",
			in.child.Name, in.child.Age, in.game.Name, in.game.AgeRating, s.DurationMin),
		OutOfAgeDetails{
			Game:       in.game.Name,
			ChildAge:   in.child.Age,
			GameRating: in.game.AgeRating,
			Duration:   s.DurationMin,
		},
	), nil
}
