// Package fixtures loads a household of children, games and recorded
// activity from TOML. The embedded demo household backs the CLI's replay
// mode and the end-to-end tests.
package fixtures

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nixlim/game-guardian/internal/events"
	"github.com/nixlim/game-guardian/internal/state"
)

//go:embed household.toml
var demo string

// Household is a set of enrolled children and everything they did.
type Household struct {
	// AsOf is the replay clock. No event may occur after it.
	AsOf time.Time `toml:"as_of"`

	Children []events.MonitoredChild   `toml:"children"`
	Games    []events.GameCatalogEntry `toml:"games"`
	Sessions []events.PlaySession      `toml:"sessions"`
	Friends  []events.FriendEvent      `toml:"friends"`
	Groups   []events.GroupEvent       `toml:"groups"`
}

// Demo returns the embedded demo household.
func Demo() (*Household, error) {
	h, err := Parse(demo)
	if err != nil {
		return nil, fmt.Errorf("demo household: %w", err)
	}
	return h, nil
}

// LoadFile reads a household from path.
func LoadFile(path string) (*Household, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}
	h, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// Parse decodes and checks a household. Unlike the config file, unknown
// keys are errors: a misspelt field would silently drop recorded activity.
func Parse(data string) (*Household, error) {
	var h Household
	meta, err := toml.Decode(data, &h)
	if err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parsing fixtures: unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	return &h, nil
}

func (h *Household) validate() error {
	if h.AsOf.IsZero() {
		return fmt.Errorf("fixtures: as_of is required")
	}

	children := make(map[string]bool, len(h.Children))
	for _, c := range h.Children {
		if err := c.Validate(); err != nil {
			return err
		}
		if children[c.ID] {
			return fmt.Errorf("fixtures: duplicate child %s", c.ID)
		}
		children[c.ID] = true
	}

	games := make(map[string]bool, len(h.Games))
	for _, g := range h.Games {
		if g.ID == "" {
			return fmt.Errorf("fixtures: game without id")
		}
		games[g.ID] = true
	}

	for _, e := range h.Events() {
		if err := e.Validate(); err != nil {
			return err
		}
		if !children[e.Owner()] {
			return fmt.Errorf("fixtures: %s: %w: %s", e.Key(), events.ErrUnknownChild, e.Owner())
		}
		if e.OccurredAt().After(h.AsOf) {
			return fmt.Errorf("fixtures: %s occurs after as_of %s", e.Key(), h.AsOf.Format(time.RFC3339))
		}
		if s, ok := e.(events.PlaySession); ok && !games[s.GameID] {
			return fmt.Errorf("fixtures: %s: game %s is not in the catalog", e.Key(), s.GameID)
		}
	}
	return nil
}

// Events returns every recorded event ordered by occurrence time. Events
// at the same instant keep file order: sessions, then friends, then groups.
func (h *Household) Events() []events.Event {
	out := make([]events.Event, 0, len(h.Sessions)+len(h.Friends)+len(h.Groups))
	for _, s := range h.Sessions {
		out = append(out, s)
	}
	for _, f := range h.Friends {
		out = append(out, f)
	}
	for _, g := range h.Groups {
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt().Before(out[j].OccurredAt())
	})
	return out
}

// Profiles returns a profile store holding the household's children.
func (h *Household) Profiles() (*state.Profiles, error) {
	p := state.NewProfiles()
	for _, c := range h.Children {
		if err := p.Put(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Catalog returns a catalog holding the household's games.
func (h *Household) Catalog() *state.Catalog {
	return state.NewCatalog(h.Games...)
}
