package state

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nixlim/game-guardian/internal/events"
)

var (
	testNow = time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	est     = time.FixedZone("EST", -5*3600)
)

func newTestLog(t *testing.T, ids ...string) *Log {
	t.Helper()
	profiles := NewProfiles()
	for _, id := range ids {
		if err := profiles.Put(events.MonitoredChild{ID: id, Name: id, Age: 10, Timezone: "America/New_York"}); err != nil {
			t.Fatalf("Put(%s): %v", id, err)
		}
	}
	return NewLog(profiles, WithClock(func() time.Time { return testNow }))
}

func session(id, child string, at time.Time, minutes int) events.PlaySession {
	return events.PlaySession{ID: id, ChildID: child, GameID: "game-001", StartedAt: at, DurationMin: minutes}
}

func TestEventLog_OrdersByOccurrence(t *testing.T) {
	log := newTestLog(t, "child-001")

	base := time.Date(2026, 1, 28, 10, 0, 0, 0, est)
	for _, s := range []events.PlaySession{
		session("s3", "child-001", base.Add(3*time.Hour), 10),
		session("s1", "child-001", base.Add(1*time.Hour), 10),
		session("s2", "child-001", base.Add(2*time.Hour), 10),
	} {
		if err := log.Append(s); err != nil {
			t.Fatalf("Append(%s): %v", s.ID, err)
		}
	}

	evs, err := log.Events("child-001")
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	var got []string
	for _, e := range evs {
		got = append(got, e.Key())
	}
	want := []string{"session:s1", "session:s2", "session:s3"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestEventLog_TiesKeepArrivalOrder(t *testing.T) {
	log := newTestLog(t, "child-001")
	at := time.Date(2026, 1, 28, 10, 0, 0, 0, est)

	for _, id := range []string{"a", "b", "c"} {
		if err := log.Append(session(id, "child-001", at, 5)); err != nil {
			t.Fatalf("Append(%s): %v", id, err)
		}
	}

	evs, _ := log.Events("child-001")
	for i, id := range []string{"a", "b", "c"} {
		if evs[i].Key() != "session:"+id {
			t.Errorf("evs[%d] = %s, want session:%s", i, evs[i].Key(), id)
		}
	}
}

func TestEventLog_AppendRejects(t *testing.T) {
	log := newTestLog(t, "child-001")
	at := time.Date(2026, 1, 28, 10, 0, 0, 0, est)

	if err := log.Append(session("dup", "child-001", at, 5)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	tests := []struct {
		name  string
		event events.Event
		want  error
	}{
		{"future timestamp", session("f", "child-001", testNow.Add(time.Minute), 5), events.ErrInvalidEvent},
		{"unknown child", session("u", "child-999", at, 5), events.ErrUnknownChild},
		{"negative duration", session("n", "child-001", at, -1), events.ErrInvalidEvent},
		{"zero timestamp", session("z", "child-001", time.Time{}, 5), events.ErrInvalidEvent},
		{"duplicate key", session("dup", "child-001", at, 5), events.ErrInvalidEvent},
		{"nil event", nil, events.ErrInvalidEvent},
		{"bad friend status", events.FriendEvent{FriendID: "f1", ChildID: "child-001", AddedAt: at, Status: "pending"}, events.ErrInvalidEvent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := log.Append(tc.event)
			if !errors.Is(err, tc.want) {
				t.Errorf("Append error = %v, want %v", err, tc.want)
			}
		})
	}

	if n := log.Len("child-001"); n != 1 {
		t.Errorf("Len = %d after rejected appends, want 1", n)
	}
}

func TestEventLog_WindowBounds(t *testing.T) {
	log := newTestLog(t, "child-001")
	start := time.Date(2026, 1, 26, 0, 0, 0, 0, est)
	end := start.Add(24 * time.Hour)

	for _, s := range []events.PlaySession{
		session("before", "child-001", start.Add(-time.Nanosecond), 5),
		session("at-start", "child-001", start, 5),
		session("inside", "child-001", start.Add(12*time.Hour), 5),
		session("at-end", "child-001", end, 5),
	} {
		if err := log.Append(s); err != nil {
			t.Fatalf("Append(%s): %v", s.ID, err)
		}
	}

	evs, err := log.Window("child-001", start, end)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("Window returned %d events, want 2", len(evs))
	}
	if evs[0].Key() != "session:at-start" || evs[1].Key() != "session:inside" {
		t.Errorf("Window = [%s %s], want [session:at-start session:inside]", evs[0].Key(), evs[1].Key())
	}

	if _, err := log.Window("child-001", end, start); !errors.Is(err, events.ErrInvalidEvent) {
		t.Errorf("inverted window error = %v, want ErrInvalidEvent", err)
	}
	if _, err := log.Window("child-999", start, end); !errors.Is(err, events.ErrUnknownChild) {
		t.Errorf("unknown child error = %v, want ErrUnknownChild", err)
	}
}

func TestEventLog_CommitCheckAbortsAppend(t *testing.T) {
	log := newTestLog(t, "child-001")
	at := time.Date(2026, 1, 28, 10, 0, 0, 0, est)
	boom := errors.New("boom")

	var seen int
	err := log.Commit(session("s1", "child-001", at, 5), func(snapshot []events.Event) error {
		seen = len(snapshot)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Commit error = %v, want boom", err)
	}
	if seen != 1 {
		t.Errorf("check saw %d events, want 1 (pending event included)", seen)
	}
	if n := log.Len("child-001"); n != 0 {
		t.Errorf("Len = %d after aborted commit, want 0", n)
	}

	// The same event can be committed once the check passes.
	if err := log.Commit(session("s1", "child-001", at, 5), func([]events.Event) error { return nil }); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if n := log.Len("child-001"); n != 1 {
		t.Errorf("Len = %d, want 1", n)
	}
}

func TestEventLog_EventsReturnsCopy(t *testing.T) {
	log := newTestLog(t, "child-001")
	at := time.Date(2026, 1, 28, 10, 0, 0, 0, est)
	_ = log.Append(session("s1", "child-001", at, 5))

	evs, _ := log.Events("child-001")
	evs[0] = session("other", "child-001", at, 99)

	again, _ := log.Events("child-001")
	if again[0].Key() != "session:s1" {
		t.Errorf("stored event was modified through returned slice: %s", again[0].Key())
	}
}

func TestEventLog_OnAppend(t *testing.T) {
	log := newTestLog(t, "child-001")
	var got []string
	log.OnAppend(func(e events.Event) {
		got = append(got, e.Key())
	})

	at := time.Date(2026, 1, 28, 10, 0, 0, 0, est)
	_ = log.Append(session("s1", "child-001", at, 5))
	_ = log.Append(session("s1", "child-001", at, 5)) // duplicate, not notified

	if len(got) != 1 || got[0] != "session:s1" {
		t.Errorf("listener saw %v, want [session:s1]", got)
	}
}

func TestEventLog_ConcurrentAccess(t *testing.T) {
	log := newTestLog(t, "child-001", "child-002")
	base := time.Date(2026, 1, 28, 0, 0, 0, 0, est)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			child := "child-001"
			if n%2 == 0 {
				child = "child-002"
			}
			_ = log.Append(session(fmt.Sprintf("s%03d", n), child, base.Add(time.Duration(100-n)*time.Minute), 5))
		}(i)
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = log.Events("child-001")
			_, _ = log.Window("child-002", base, base.Add(24*time.Hour))
		}()
	}

	wg.Wait()

	for _, child := range []string{"child-001", "child-002"} {
		evs, _ := log.Events(child)
		if len(evs) != 50 {
			t.Errorf("%s has %d events, want 50", child, len(evs))
		}
		for i := 1; i < len(evs); i++ {
			if evs[i].OccurredAt().Before(evs[i-1].OccurredAt()) {
				t.Errorf("%s out of order at %d", child, i)
				break
			}
		}
	}
}
