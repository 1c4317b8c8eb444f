package alerts

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/nixlim/game-guardian/internal/events"
)

// Type identifies the rule that produced an alert.
type Type string

const (
	TypeLateNightGaming Type = "late-night-gaming"
	TypeRapidFriends    Type = "rapid-friends"
	TypeRiskyGroup      Type = "risky-group"
	TypeOutOfAgeGaming  Type = "out-of-age-gaming"
)

// Types lists every alert type in rule evaluation order.
var Types = []Type{TypeLateNightGaming, TypeOutOfAgeGaming, TypeRapidFriends, TypeRiskyGroup}

// Severity is an ordered alert severity: low < medium < high.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank returns the position of s on the severity scale, or 0 for an
// unknown value.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as min or more.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// Details is the type-specific payload of an alert. Each alert Type has
// exactly one Details implementation.
type Details interface {
	AlertType() Type
}

// LateNightDetails describes a session that started during quiet hours.
type LateNightDetails struct {
	Game     string `json:"game"`
	Time     string `json:"time"`     // local start time, e.g. "2:15 AM"
	Duration int    `json:"duration"` // minutes
}

func (LateNightDetails) AlertType() Type { return TypeLateNightGaming }

// OutOfAgeDetails describes a session on a game rated above the child's age.
type OutOfAgeDetails struct {
	Game       string `json:"game"`
	ChildAge   int    `json:"childAge"`
	GameRating string `json:"gameRating"`
	Duration   int    `json:"duration"` // minutes
}

func (OutOfAgeDetails) AlertType() Type { return TypeOutOfAgeGaming }

// RapidFriendsDetails lists the friends in the cluster that fired.
type RapidFriendsDetails struct {
	Count   int      `json:"count"`
	Friends []string `json:"friends"`
}

func (RapidFriendsDetails) AlertType() Type { return TypeRapidFriends }

// RiskyGroupDetails records which configured keywords matched.
type RiskyGroupDetails struct {
	GroupName   string   `json:"groupName"`
	Keywords    []string `json:"keywords"`
	MemberCount int      `json:"memberCount"`
}

func (RiskyGroupDetails) AlertType() Type { return TypeRiskyGroup }

// Alert is a classified safety finding. Everything except IsRead is fixed
// when the alert is created; alerts are never deleted.
type Alert struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Severity  Severity  `json:"severity"`
	ChildID   string    `json:"childId"`
	Timestamp time.Time `json:"timestamp"` // when the triggering event occurred
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Details   Details   `json:"details"`
	IsRead    bool      `json:"isRead"`
}

// errDetailsMismatch is returned when decoded details do not belong to the
// alert's type.
var errDetailsMismatch = errors.New("alert details do not match alert type")

// UnmarshalJSON decodes the details payload according to the alert type.
func (a *Alert) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string          `json:"id"`
		Type      Type            `json:"type"`
		Severity  Severity        `json:"severity"`
		ChildID   string          `json:"childId"`
		Timestamp time.Time       `json:"timestamp"`
		Title     string          `json:"title"`
		Message   string          `json:"message"`
		Details   json.RawMessage `json:"details"`
		IsRead    bool            `json:"isRead"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	details, err := decodeDetails(raw.Type, raw.Details)
	if err != nil {
		return fmt.Errorf("alert %s: %w", raw.ID, err)
	}

	*a = Alert{
		ID:        raw.ID,
		Type:      raw.Type,
		Severity:  raw.Severity,
		ChildID:   raw.ChildID,
		Timestamp: raw.Timestamp,
		Title:     raw.Title,
		Message:   raw.Message,
		Details:   details,
		IsRead:    raw.IsRead,
	}
	return nil
}

func decodeDetails(t Type, data json.RawMessage) (Details, error) {
	var (
		d   Details
		err error
	)
	switch t {
	case TypeLateNightGaming:
		var v LateNightDetails
		err = json.Unmarshal(data, &v)
		d = v
	case TypeOutOfAgeGaming:
		var v OutOfAgeDetails
		err = json.Unmarshal(data, &v)
		d = v
	case TypeRapidFriends:
		var v RapidFriendsDetails
		err = json.Unmarshal(data, &v)
		d = v
	case TypeRiskyGroup:
		var v RiskyGroupDetails
		err = json.Unmarshal(data, &v)
		d = v
	default:
		return nil, fmt.Errorf("unknown alert type %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s details: %w", t, err)
	}
	return d, nil
}

// Validate checks the type/details invariant.
func (a Alert) Validate() error {
	if a.Details == nil || a.Details.AlertType() != a.Type {
		return fmt.Errorf("alert %s (%s): %w", a.ID, a.Type, errDetailsMismatch)
	}
	return nil
}

// ChildLookup resolves child profiles. Misses wrap events.ErrNotFound.
type ChildLookup interface {
	Child(id string) (events.MonitoredChild, error)
}

// GameLookup resolves catalog entries. Misses wrap events.ErrNotFound.
type GameLookup interface {
	Game(id string) (events.GameCatalogEntry, error)
}
