// Package summary builds the weekly activity overview shown on a child's
// dashboard. Summarize is a pure computation over an event set;
// Aggregator reads that set from the event log.
package summary

import (
	"errors"
	"fmt"
	"time"

	"github.com/nixlim/game-guardian/internal/events"
	"github.com/nixlim/game-guardian/internal/metrics"
)

// Window returns the seven local calendar days ending with the day that
// contains windowEnd: [midnight - 6 days, midnight + 1 day).
func Window(windowEnd time.Time, loc *time.Location) (start, end time.Time) {
	local := windowEnd.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return midnight.AddDate(0, 0, -6), midnight.AddDate(0, 0, 1)
}

// slot maps a weekday to its chart position, Monday first.
func slot(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// Summarize computes the child's summary for the week ending on
// windowEnd's local day. Events outside the window are ignored, so the
// whole log may be passed.
//
// Sessions count toward the day they started on. NewFriends counts
// distinct friends with a non-removed friend event in the window;
// NewGroups counts distinct groups joined in the window.
//
// Every event must belong to child and be well formed; otherwise no summary
// is returned and the error wraps events.ErrUnknownChild or
// events.ErrInvalidEvent.
func Summarize(child events.MonitoredChild, windowEnd time.Time, evs []events.Event) (ActivitySummary, error) {
	loc, err := child.Location()
	if err != nil {
		return ActivitySummary{}, err
	}

	start, end := Window(windowEnd, loc)
	s := ActivitySummary{
		ChildID:     child.ID,
		WindowStart: start,
		WindowEnd:   end,
	}
	for i := range s.ChartData {
		day := start.AddDate(0, 0, i)
		idx := slot(day.Weekday())
		s.ChartData[idx] = DayBucket{Day: DayLabels[idx], Date: day.Format("2006-01-02")}
	}

	games := make(map[string]struct{})
	friends := make(map[string]struct{})
	groups := make(map[string]struct{})

	for _, e := range evs {
		if e == nil {
			return ActivitySummary{}, fmt.Errorf("%w: nil event", events.ErrInvalidEvent)
		}
		if err := e.Validate(); err != nil {
			return ActivitySummary{}, err
		}
		if e.Owner() != child.ID {
			return ActivitySummary{}, fmt.Errorf("%w: event %s belongs to %s, not %s",
				events.ErrUnknownChild, e.Key(), e.Owner(), child.ID)
		}

		at := e.OccurredAt()
		if at.Before(start) || !at.Before(end) {
			continue
		}

		switch ev := e.(type) {
		case events.PlaySession:
			s.ChartData[slot(at.In(loc).Weekday())].Minutes += ev.DurationMin
			games[ev.GameID] = struct{}{}
		case events.FriendEvent:
			if ev.Status != events.FriendRemoved {
				friends[ev.FriendID] = struct{}{}
			}
		case events.GroupEvent:
			groups[ev.GroupID] = struct{}{}
		}
	}

	for _, b := range s.ChartData {
		s.TotalPlaytime += b.Minutes
	}
	s.GamesPlayed = len(games)
	s.NewFriends = len(friends)
	s.NewGroups = len(groups)
	return s, nil
}

// Source reads a child's events in a time range.
type Source interface {
	Window(childID string, start, end time.Time) ([]events.Event, error)
}

// ChildLookup resolves child profiles. Misses wrap events.ErrNotFound.
type ChildLookup interface {
	Child(id string) (events.MonitoredChild, error)
}

// Aggregator builds summaries from the event log.
type Aggregator struct {
	src      Source
	children ChildLookup
}

// NewAggregator creates an Aggregator reading from src.
func NewAggregator(src Source, children ChildLookup) *Aggregator {
	return &Aggregator{src: src, children: children}
}

// Summary returns the summary for the week ending on windowEnd's day in
// the child's timezone. An unknown child fails with events.ErrUnknownChild.
func (a *Aggregator) Summary(childID string, windowEnd time.Time) (ActivitySummary, error) {
	start := time.Now()
	defer func() { metrics.ObserveSummary(time.Since(start)) }()

	child, err := a.children.Child(childID)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			return ActivitySummary{}, fmt.Errorf("%w: %s", events.ErrUnknownChild, childID)
		}
		return ActivitySummary{}, err
	}
	loc, err := child.Location()
	if err != nil {
		return ActivitySummary{}, err
	}

	from, to := Window(windowEnd, loc)
	evs, err := a.src.Window(childID, from, to)
	if err != nil {
		return ActivitySummary{}, fmt.Errorf("reading events for %s: %w", childID, err)
	}
	return Summarize(child, windowEnd, evs)
}
