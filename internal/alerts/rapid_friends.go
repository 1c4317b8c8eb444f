package alerts

import (
	"fmt"
	"sort"
	"time"

	"github.com/nixlim/game-guardian/internal/events"
)

// rapidFriendsRule flags bursts of new friends.
//
// The window trails the newest friend event in the child's history, never
// the wall clock. The rule fires for the event that lifts the number of
// distinct new friends in that window to the threshold: if the window
// already reached the threshold without the triggering event, the cluster
// has been reported and nothing fires. A fourth friend in the same window
// therefore does not repeat the alert, while a friend that arrives late
// and completes a cluster still reports it.
type rapidFriendsRule struct{}

func (rapidFriendsRule) Type() Type { return TypeRapidFriends }

func (rapidFriendsRule) Enabled(cfg RuleConfig) bool { return cfg.RapidFriendsEnabled }

func (rapidFriendsRule) Check(in input) (*Alert, error) {
	trigger, ok := in.event.(events.FriendEvent)
	if !ok || trigger.Status == events.FriendRemoved {
		return nil, nil
	}

	window := in.cfg.rapidFriendsWindow()
	threshold := max(in.cfg.RapidFriendsThreshold, 1)

	others, ref := otherFriends(in.history, trigger)
	before := newFriendsAt(others, ref, window)
	if len(before) >= threshold {
		return nil, nil
	}
	cluster := newFriendsAt(append(others, trigger), ref, window)
	if len(cluster) < threshold {
		return nil, nil
	}

	names := make([]string, len(cluster))
	for i, f := range cluster {
		names[i] = f.Username
		if names[i] == "" {
			names[i] = f.FriendID
		}
	}

	return newAlert(in, TypeRapidFriends, SeverityMedium,
		"Multiple New Friends",
		fmt.Sprintf("%s added %d new friends in the last %s.", in.child.Name, len(cluster), formatWindow(window)),
		RapidFriendsDetails{Count: len(cluster), Friends: names},
	), nil
}

// otherFriends returns the child's friend events in history other than
// trigger, in log order, together with the newest friend timestamp
// including the trigger's.
func otherFriends(history []events.Event, trigger events.FriendEvent) ([]events.FriendEvent, time.Time) {
	key := trigger.Key()
	ref := trigger.AddedAt

	var out []events.FriendEvent
	for _, e := range history {
		f, ok := e.(events.FriendEvent)
		if !ok || f.ChildID != trigger.ChildID || f.Key() == key {
			continue
		}
		out = append(out, f)
		if f.AddedAt.After(ref) {
			ref = f.AddedAt
		}
	}
	return out, ref
}

// newFriendsAt returns the distinct friends that count as new at ref,
// ordered by when they were added. A friend whose latest event at or
// before ref is a removal does not count.
func newFriendsAt(friends []events.FriendEvent, ref time.Time, window time.Duration) []events.FriendEvent {
	latest := make(map[string]events.FriendEvent)
	for _, f := range friends {
		if f.AddedAt.After(ref) {
			continue
		}
		if prev, ok := latest[f.FriendID]; !ok || !f.AddedAt.Before(prev.AddedAt) {
			latest[f.FriendID] = f
		}
	}

	seen := make(map[string]bool)
	var out []events.FriendEvent
	for _, f := range friends {
		if seen[f.FriendID] || latest[f.FriendID].Status == events.FriendRemoved || !f.IsNewAt(ref, window) {
			continue
		}
		seen[f.FriendID] = true
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AddedAt.Before(out[j].AddedAt)
	})
	return out
}

func formatWindow(d time.Duration) string {
	hours := int(d / time.Hour)
	if hours == 1 {
		return "hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
