// Package state holds the in-memory records the engine reads from: the
// per-child event log, the child profile store and the game catalog.
// All types are safe for concurrent use.
package state

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nixlim/game-guardian/internal/events"
)

// Directory reports whether a child is enrolled. Appends for children the
// directory does not know fail with events.ErrUnknownChild.
type Directory interface {
	Has(childID string) bool
}

// AppendListener is called after an event has been committed. Listeners
// run outside the log's locks and must not block.
type AppendListener func(e events.Event)

// CheckFunc inspects the child's log as it would look with the pending
// event included. Returning an error aborts the append.
type CheckFunc = func(snapshot []events.Event) error

// Log is an append-only, per-child event log ordered by occurrence time.
//
// Each child has its own lock: appends for one child are serialized,
// appends for different children do not contend beyond a short registry
// lookup. Stored slices are never modified in place; every append swaps in
// a new slice, so readers always observe a complete snapshot.
type Log struct {
	mu        sync.RWMutex
	children  map[string]*childLog
	listeners []AppendListener

	dir Directory
	now func() time.Time
}

type childLog struct {
	mu     sync.RWMutex
	events []events.Event
	keys   map[string]struct{}
}

// LogOption configures a Log.
type LogOption func(*Log)

// WithClock sets the time source used to reject events from the future.
func WithClock(now func() time.Time) LogOption {
	return func(l *Log) {
		l.now = now
	}
}

// NewLog creates an empty log. dir may be nil, in which case any child ID
// is accepted.
func NewLog(dir Directory, opts ...LogOption) *Log {
	l := &Log{
		children: make(map[string]*childLog),
		dir:      dir,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// OnAppend registers a listener invoked after every successful append.
func (l *Log) OnAppend(fn AppendListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Append records e. It fails with events.ErrInvalidEvent if e is malformed,
// duplicated or timestamped in the future, and with events.ErrUnknownChild
// if the child is not enrolled.
func (l *Log) Append(e events.Event) error {
	return l.Commit(e, nil)
}

// Commit records e only if check accepts the resulting snapshot. The check
// runs while the child's log is write-locked, so no other append for the
// same child can interleave between the check and the write.
func (l *Log) Commit(e events.Event, check CheckFunc) error {
	if err := l.validate(e); err != nil {
		return err
	}

	cl := l.getOrCreate(e.Owner())

	cl.mu.Lock()
	if _, dup := cl.keys[e.Key()]; dup {
		cl.mu.Unlock()
		return fmt.Errorf("%w: duplicate event %s for child %s", events.ErrInvalidEvent, e.Key(), e.Owner())
	}

	// Insert after any events with the same timestamp so ties keep
	// arrival order.
	at := e.OccurredAt()
	idx := sort.Search(len(cl.events), func(i int) bool {
		return cl.events[i].OccurredAt().After(at)
	})
	next := make([]events.Event, 0, len(cl.events)+1)
	next = append(next, cl.events[:idx]...)
	next = append(next, e)
	next = append(next, cl.events[idx:]...)

	if check != nil {
		if err := check(next); err != nil {
			cl.mu.Unlock()
			return err
		}
	}

	cl.events = next
	cl.keys[e.Key()] = struct{}{}
	cl.mu.Unlock()

	l.mu.RLock()
	listeners := l.listeners
	l.mu.RUnlock()
	for _, fn := range listeners {
		fn(e)
	}
	return nil
}

func (l *Log) validate(e events.Event) error {
	if e == nil {
		return fmt.Errorf("%w: nil event", events.ErrInvalidEvent)
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if at := e.OccurredAt(); at.After(l.now()) {
		return fmt.Errorf("%w: %s occurs in the future (%s)", events.ErrInvalidEvent, e.Key(), at.Format(time.RFC3339))
	}
	if l.dir != nil && !l.dir.Has(e.Owner()) {
		return fmt.Errorf("%w: %s", events.ErrUnknownChild, e.Owner())
	}
	return nil
}

// getOrCreate returns the child's log, creating it on first use.
func (l *Log) getOrCreate(childID string) *childLog {
	l.mu.RLock()
	cl, ok := l.children[childID]
	l.mu.RUnlock()
	if ok {
		return cl
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cl, ok = l.children[childID]; ok {
		return cl
	}
	cl = &childLog{keys: make(map[string]struct{})}
	l.children[childID] = cl
	return cl
}

// snapshot returns the child's current slice. The slice must not be
// modified by the caller; exported readers copy it.
func (l *Log) snapshot(childID string) ([]events.Event, error) {
	if l.dir != nil && !l.dir.Has(childID) {
		return nil, fmt.Errorf("%w: %s", events.ErrUnknownChild, childID)
	}

	l.mu.RLock()
	cl, ok := l.children[childID]
	l.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return cl.events, nil
}

// Events returns a copy of every event recorded for the child, oldest
// first.
func (l *Log) Events(childID string) ([]events.Event, error) {
	evs, err := l.snapshot(childID)
	if err != nil {
		return nil, err
	}
	out := make([]events.Event, len(evs))
	copy(out, evs)
	return out, nil
}

// Window returns the child's events with start <= OccurredAt < end, oldest
// first.
func (l *Log) Window(childID string, start, end time.Time) ([]events.Event, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: window end %s before start %s", events.ErrInvalidEvent,
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	evs, err := l.snapshot(childID)
	if err != nil {
		return nil, err
	}

	lo := sort.Search(len(evs), func(i int) bool {
		return !evs[i].OccurredAt().Before(start)
	})
	hi := sort.Search(len(evs), func(i int) bool {
		return !evs[i].OccurredAt().Before(end)
	})
	out := make([]events.Event, hi-lo)
	copy(out, evs[lo:hi])
	return out, nil
}

// Len returns the number of events recorded for the child.
func (l *Log) Len(childID string) int {
	evs, err := l.snapshot(childID)
	if err != nil {
		return 0
	}
	return len(evs)
}
