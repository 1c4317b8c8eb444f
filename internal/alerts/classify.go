// Package alerts classifies monitoring events into safety alerts and keeps
// the resulting alerts for the parent's inbox.
//
// Classify is a pure function of its arguments. Engine wires it to the
// event log so that an event and its alerts are recorded together or not
// at all.
package alerts

import (
	"errors"
	"fmt"

	"github.com/nixlim/game-guardian/internal/events"
)

// Classify evaluates event against every enabled rule and returns the
// alerts that fire, in rule order. history is the child's ordered log and
// should include event; the rapid-friends rule adds it when missing.
//
// On any error no alerts are returned. Errors wrap ErrInvalidConfiguration,
// events.ErrUnknownChild (event belongs to another child),
// events.ErrInvalidEvent, events.ErrInvalidProfile (timezone does not
// resolve) or events.ErrNotFound (game not in the catalog).
func Classify(
	child events.MonitoredChild,
	event events.Event,
	history []events.Event,
	cfg RuleConfig,
	games GameLookup,
) ([]Alert, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if event == nil {
		return nil, fmt.Errorf("%w: nil event", events.ErrInvalidEvent)
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if event.Owner() != child.ID {
		return nil, fmt.Errorf("%w: event %s belongs to %s, not %s",
			events.ErrUnknownChild, event.Key(), event.Owner(), child.ID)
	}
	loc, err := child.Location()
	if err != nil {
		return nil, err
	}

	if !cfg.PatternDetection {
		return nil, nil
	}

	in := input{
		child:   child,
		loc:     loc,
		event:   event,
		history: history,
		cfg:     cfg,
	}

	switch e := event.(type) {
	case events.PlaySession:
		if cfg.LateNightEnabled || cfg.OutOfAgeEnabled {
			if in.game, err = lookupGame(games, e.GameID); err != nil {
				return nil, fmt.Errorf("session %s: %w", e.ID, err)
			}
		}
	case events.FriendEvent, events.GroupEvent:
	default:
		return nil, fmt.Errorf("%w: unsupported event kind %q", events.ErrInvalidEvent, event.Kind())
	}

	var out []Alert
	for _, r := range rules {
		if !r.Enabled(cfg) {
			continue
		}
		a, err := r.Check(in)
		if err != nil {
			return nil, fmt.Errorf("%s rule: %w", r.Type(), err)
		}
		if a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func lookupGame(games GameLookup, id string) (events.GameCatalogEntry, error) {
	if games == nil {
		return events.GameCatalogEntry{}, fmt.Errorf("game %s: %w", id, events.ErrNotFound)
	}
	g, err := games.Game(id)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			return events.GameCatalogEntry{}, err
		}
		return events.GameCatalogEntry{}, fmt.Errorf("game %s: %w", id, err)
	}
	return g, nil
}
