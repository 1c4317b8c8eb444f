package alerts

import (
	"time"

	"github.com/google/uuid"

	"github.com/nixlim/game-guardian/internal/events"
)

// alertNamespace scopes the name-based alert IDs.
var alertNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://game-guardian.app/alerts"))

// alertID derives a stable ID from the child, rule and triggering event,
// so classifying the same log twice yields the same IDs.
func alertID(childID string, t Type, eventKey string) string {
	return uuid.NewSHA1(alertNamespace, []byte(childID+"|"+string(t)+"|"+eventKey)).String()
}

// input is everything a rule may look at for one classification.
type input struct {
	child   events.MonitoredChild
	loc     *time.Location
	event   events.Event
	history []events.Event
	cfg     RuleConfig

	// game is set for play sessions.
	game events.GameCatalogEntry
}

// rule evaluates one alert type. Check returns nil when the rule does not
// fire.
type rule interface {
	Type() Type
	Enabled(cfg RuleConfig) bool
	Check(in input) (*Alert, error)
}

// rules is the fixed rule set in evaluation order.
var rules = []rule{
	lateNightRule{},
	outOfAgeRule{},
	rapidFriendsRule{},
	riskyGroupRule{},
}

func newAlert(in input, t Type, sev Severity, title, message string, details Details) *Alert {
	return &Alert{
		ID:        alertID(in.child.ID, t, in.event.Key()),
		Type:      t,
		Severity:  sev,
		ChildID:   in.child.ID,
		Timestamp: in.event.OccurredAt(),
		Title:     title,
		Message:   message,
		Details:   details,
	}
}
