package state

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nixlim/game-guardian/internal/events"
)

// Catalog is a read-only-by-convention lookup of game metadata. It is
// filled once at startup; the engine never mutates it.
type Catalog struct {
	mu    sync.RWMutex
	games map[string]events.GameCatalogEntry
}

// NewCatalog creates a catalog holding the given entries. Later entries
// replace earlier ones with the same ID.
func NewCatalog(entries ...events.GameCatalogEntry) *Catalog {
	c := &Catalog{
		games: make(map[string]events.GameCatalogEntry, len(entries)),
	}
	for _, g := range entries {
		c.games[g.ID] = g
	}
	return c
}

// Put adds or replaces an entry.
func (c *Catalog) Put(g events.GameCatalogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.games[g.ID] = g
}

// Game returns the entry for id, or events.ErrNotFound.
func (c *Catalog) Game(id string) (events.GameCatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	g, ok := c.games[id]
	if !ok {
		return events.GameCatalogEntry{}, fmt.Errorf("game %q: %w", id, events.ErrNotFound)
	}
	return g, nil
}

// List returns all entries sorted by ID.
func (c *Catalog) List() []events.GameCatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]events.GameCatalogEntry, 0, len(c.games))
	for _, g := range c.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}
