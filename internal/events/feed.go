package events

import (
	"sync"
	"time"
)

// FeedEntry is one line of the activity feed.
type FeedEntry struct {
	ChildID    string    `json:"childId"`
	Kind       Kind      `json:"kind"`
	OccurredAt time.Time `json:"occurredAt"`
	Text       string    `json:"text"`
}

// Feed keeps the most recently recorded activity, in arrival order, up to
// a fixed capacity. When full, the oldest entry is dropped.
type Feed struct {
	mu    sync.RWMutex
	items []FeedEntry
	cap   int
	head  int // index of the oldest entry
	count int
}

// NewFeed creates a feed holding at most capacity entries (minimum 1).
func NewFeed(capacity int) *Feed {
	if capacity < 1 {
		capacity = 1
	}
	return &Feed{
		items: make([]FeedEntry, capacity),
		cap:   capacity,
	}
}

func (f *Feed) Add(e FeedEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.count == f.cap {
		f.items[f.head] = e
		f.head = (f.head + 1) % f.cap
		return
	}
	f.items[(f.head+f.count)%f.cap] = e
	f.count++
}

// ListAll returns every entry, oldest first.
func (f *Feed) ListAll() []FeedEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filterLocked(func(FeedEntry) bool { return true }, 0)
}

// ListByChild returns the newest limit entries for childID, oldest first.
// A limit of 0 returns them all.
func (f *Feed) ListByChild(childID string, limit int) []FeedEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filterLocked(func(e FeedEntry) bool { return e.ChildID == childID }, limit)
}

func (f *Feed) ListByKind(kind Kind) []FeedEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filterLocked(func(e FeedEntry) bool { return e.Kind == kind }, 0)
}

func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.count
}

func (f *Feed) Cap() int {
	return f.cap
}

// filterLocked walks newest to oldest so limit keeps the latest entries.
// Caller must hold at least a read lock.
func (f *Feed) filterLocked(keep func(FeedEntry) bool, limit int) []FeedEntry {
	var out []FeedEntry
	for i := f.count - 1; i >= 0; i-- {
		e := f.items[(f.head+i)%f.cap]
		if !keep(e) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
