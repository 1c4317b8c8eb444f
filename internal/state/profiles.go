package state

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nixlim/game-guardian/internal/events"
)

// Profiles is the in-memory child profile store.
type Profiles struct {
	mu       sync.RWMutex
	children map[string]events.MonitoredChild
}

// NewProfiles creates an empty profile store.
func NewProfiles() *Profiles {
	return &Profiles{
		children: make(map[string]events.MonitoredChild),
	}
}

// Put enrolls a child or replaces the profile with the same ID. The profile
// is validated first and rejected with events.ErrInvalidProfile.
func (p *Profiles) Put(c events.MonitoredChild) error {
	if err := c.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.children[c.ID] = c
	return nil
}

// Child returns the profile for id, or events.ErrNotFound.
func (p *Profiles) Child(id string) (events.MonitoredChild, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, ok := p.children[id]
	if !ok {
		return events.MonitoredChild{}, fmt.Errorf("child %q: %w", id, events.ErrNotFound)
	}
	return c, nil
}

// Has reports whether id is enrolled.
func (p *Profiles) Has(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.children[id]
	return ok
}

// List returns all profiles sorted by ID.
func (p *Profiles) List() []events.MonitoredChild {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]events.MonitoredChild, 0, len(p.children))
	for _, c := range p.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}
