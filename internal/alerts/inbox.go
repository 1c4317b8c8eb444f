package alerts

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/nixlim/game-guardian/internal/events"
	"github.com/nixlim/game-guardian/internal/metrics"
)

// AlertFilter selects alerts from the inbox. Zero values match everything.
type AlertFilter struct {
	ChildID     string
	UnreadOnly  bool
	MinSeverity Severity
	Types       []Type

	// Limit caps the result size when positive.
	Limit int
}

func (f AlertFilter) match(a Alert) bool {
	if f.ChildID != "" && a.ChildID != f.ChildID {
		return false
	}
	if f.UnreadOnly && a.IsRead {
		return false
	}
	if f.MinSeverity != "" && !a.Severity.AtLeast(f.MinSeverity) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, a.Type) {
		return false
	}
	return true
}

// Inbox holds every alert produced for the household. Alerts are never
// removed; only their read flag changes. Safe for concurrent use.
type Inbox struct {
	mu     sync.RWMutex
	alerts map[string]*Alert
	order  []string // insertion order, for stable listing of equal timestamps
}

// NewInbox creates an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{
		alerts: make(map[string]*Alert),
	}
}

// Add stores alerts whose IDs are not yet present and returns how many
// were new. Re-adding a known ID leaves the stored alert, including its
// read flag, untouched.
func (in *Inbox) Add(alerts ...Alert) int {
	in.mu.Lock()
	defer in.mu.Unlock()

	added := 0
	for _, a := range alerts {
		if _, ok := in.alerts[a.ID]; ok {
			continue
		}
		a := a
		in.alerts[a.ID] = &a
		in.order = append(in.order, a.ID)
		added++
	}
	return added
}

// Get returns a copy of the alert with the given ID.
func (in *Inbox) Get(id string) (Alert, error) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	a, ok := in.alerts[id]
	if !ok {
		return Alert{}, fmt.Errorf("alert %q: %w", id, events.ErrNotFound)
	}
	return *a, nil
}

// MarkRead sets the alert's read flag and returns the updated alert. It
// fails with events.ErrNotFound for an unknown ID. Marking an already read
// alert is not an error.
func (in *Inbox) MarkRead(id string) (Alert, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	a, ok := in.alerts[id]
	if !ok {
		return Alert{}, fmt.Errorf("alert %q: %w", id, events.ErrNotFound)
	}
	if !a.IsRead {
		a.IsRead = true
		metrics.RecordMarkRead()
	}
	return *a, nil
}

// List returns matching alerts, newest first.
func (in *Inbox) List(f AlertFilter) []Alert {
	in.mu.RLock()
	out := make([]Alert, 0, len(in.order))
	for i := len(in.order) - 1; i >= 0; i-- {
		a := in.alerts[in.order[i]]
		if f.match(*a) {
			out = append(out, *a)
		}
	}
	in.mu.RUnlock()

	// Walking the insertion order backwards keeps later arrivals first
	// among equal timestamps.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// UnreadCount returns the number of unread alerts for the child, or for
// everyone when childID is empty.
func (in *Inbox) UnreadCount(childID string) int {
	in.mu.RLock()
	defer in.mu.RUnlock()

	n := 0
	for _, a := range in.alerts {
		if !a.IsRead && (childID == "" || a.ChildID == childID) {
			n++
		}
	}
	return n
}

// Len returns the total number of stored alerts.
func (in *Inbox) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.alerts)
}
