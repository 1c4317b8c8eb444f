package present

import (
	"fmt"

	"github.com/nixlim/game-guardian/internal/alerts"
	"github.com/nixlim/game-guardian/internal/events"
)

// DescribeEvent renders a one-line activity feed entry, e.g.
// "Played Blox Fruits (13+) for 1h 7m". games may be nil; unknown games
// fall back to their ID.
func DescribeEvent(e events.Event, games alerts.GameLookup) string {
	switch ev := e.(type) {
	case events.PlaySession:
		name, rating := ev.GameID, ""
		if games != nil {
			if g, err := games.Game(ev.GameID); err == nil {
				name, rating = g.Name, g.AgeRating
			}
		}
		if rating != "" {
			return fmt.Sprintf("Played %s (%s) for %s", name, rating, Playtime(ev.DurationMin))
		}
		return fmt.Sprintf("Played %s for %s", name, Playtime(ev.DurationMin))

	case events.FriendEvent:
		who := ev.Username
		if who == "" {
			who = ev.FriendID
		}
		if ev.Status == events.FriendRemoved {
			return fmt.Sprintf("Removed friend %s", who)
		}
		return fmt.Sprintf("Added friend %s", who)

	case events.GroupEvent:
		return fmt.Sprintf("Joined group %s (%s)", ev.Name, Members(ev.MemberCount))

	case nil:
		return ""

	default:
		return fmt.Sprintf("%s %s", e.Kind(), e.Key())
	}
}

// Headline is the single line used for an alert in a list, e.g.
// "🛡️ Joined Potentially Risky Group".
func Headline(a alerts.Alert) string {
	return AlertIcon(a.Type) + " " + a.Title
}
