// Package events defines the facts recorded about a supervised child's
// game-platform account: play sessions, friend-list changes and group joins.
// Records are immutable once created; derived views (alerts, summaries)
// live in other packages.
package events

import (
	"fmt"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/nixlim/game-guardian/internal/validation"
)

// Kind identifies the type of a recorded fact.
type Kind string

const (
	KindPlaySession Kind = "play_session"
	KindFriend      Kind = "friend"
	KindGroup       Kind = "group"
)

// Event is a single recorded fact about a monitored child. The concrete
// types are PlaySession, FriendEvent and GroupEvent (value types).
type Event interface {
	// Kind returns the fact type.
	Kind() Kind

	// Owner returns the ID of the child the fact belongs to.
	Owner() string

	// OccurredAt returns when the fact happened. The event log orders by
	// this timestamp, not by arrival.
	OccurredAt() time.Time

	// Key returns an identifier unique within one child's log.
	Key() string

	// Validate reports whether the record is well formed. Failures wrap
	// ErrInvalidEvent.
	Validate() error
}

// MonitoredChild is the supervised account. ID is immutable once created.
type MonitoredChild struct {
	ID       string `json:"id" toml:"id" validate:"required"`
	Name     string `json:"name" toml:"name" validate:"required"`
	Age      int    `json:"age" toml:"age" validate:"gte=0"`
	Timezone string `json:"timezone" toml:"timezone" validate:"required,timezone"`
	Username string `json:"username" toml:"username"`
}

// Validate checks the profile fields. Failures wrap ErrInvalidProfile.
func (c MonitoredChild) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidProfile, c.ID, err)
	}
	return nil
}

// Location resolves the child's stored timezone. All local-time rules
// (quiet hours, calendar days) use this location, never the host's.
func (c MonitoredChild) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: timezone %q: %v", ErrInvalidProfile, c.ID, c.Timezone, err)
	}
	return loc, nil
}

// GameCatalogEntry is static metadata about a playable title.
type GameCatalogEntry struct {
	ID        string `json:"id" toml:"id"`
	Name      string `json:"name" toml:"name"`
	Creator   string `json:"creator" toml:"creator"`
	Genre     string `json:"genre" toml:"genre"`
	AgeRating string `json:"ageRating" toml:"age_rating"`
	Icon      string `json:"icon" toml:"icon"`
}

// PlaySession records a child playing one game.
type PlaySession struct {
	ID          string    `json:"id" toml:"id"`
	ChildID     string    `json:"childId" toml:"child_id"`
	GameID      string    `json:"gameId" toml:"game_id"`
	StartedAt   time.Time `json:"startedAt" toml:"started_at"`
	DurationMin int       `json:"durationMin" toml:"duration_min"`
}

func (s PlaySession) Kind() Kind            { return KindPlaySession }
func (s PlaySession) Owner() string         { return s.ChildID }
func (s PlaySession) OccurredAt() time.Time { return s.StartedAt }
func (s PlaySession) Key() string           { return "session:" + s.ID }

// Duration returns the session length.
func (s PlaySession) Duration() time.Duration {
	return time.Duration(s.DurationMin) * time.Minute
}

func (s PlaySession) Validate() error {
	switch {
	case s.ID == "":
		return fmt.Errorf("%w: play session without id", ErrInvalidEvent)
	case s.ChildID == "":
		return fmt.Errorf("%w: play session %s: missing child id", ErrInvalidEvent, s.ID)
	case s.GameID == "":
		return fmt.Errorf("%w: play session %s: missing game id", ErrInvalidEvent, s.ID)
	case s.StartedAt.IsZero():
		return fmt.Errorf("%w: play session %s: missing start time", ErrInvalidEvent, s.ID)
	case s.DurationMin < 0:
		return fmt.Errorf("%w: play session %s: duration must be non-negative, got %d", ErrInvalidEvent, s.ID, s.DurationMin)
	}
	return nil
}

// FriendStatus is the status stored with a friend-list change.
type FriendStatus string

const (
	FriendNew      FriendStatus = "new"
	FriendExisting FriendStatus = "existing"
	FriendRemoved  FriendStatus = "removed"
)

// FriendEvent records a change to the child's friend list.
//
// The stored Status goes stale: a friend stored as "new" a week ago is no
// longer new. Use IsNewAt instead of comparing Status to FriendNew.
type FriendEvent struct {
	FriendID string       `json:"friendId" toml:"friend_id"`
	ChildID  string       `json:"childId" toml:"child_id"`
	Username string       `json:"username" toml:"username"`
	AddedAt  time.Time    `json:"addedAt" toml:"added_at"`
	Status   FriendStatus `json:"status" toml:"status"`
}

func (f FriendEvent) Kind() Kind            { return KindFriend }
func (f FriendEvent) Owner() string         { return f.ChildID }
func (f FriendEvent) OccurredAt() time.Time { return f.AddedAt }

func (f FriendEvent) Key() string {
	return "friend:" + f.FriendID + ":" + string(f.Status) + ":" + strconv.FormatInt(f.AddedAt.UnixNano(), 10)
}

// IsNewAt reports whether the friend counts as new at ref: not removed,
// added at or before ref, and less than window before it.
func (f FriendEvent) IsNewAt(ref time.Time, window time.Duration) bool {
	if f.Status == FriendRemoved || f.AddedAt.After(ref) {
		return false
	}
	return ref.Sub(f.AddedAt) < window
}

func (f FriendEvent) Validate() error {
	switch {
	case f.FriendID == "":
		return fmt.Errorf("%w: friend event without friend id", ErrInvalidEvent)
	case f.ChildID == "":
		return fmt.Errorf("%w: friend %s: missing child id", ErrInvalidEvent, f.FriendID)
	case f.AddedAt.IsZero():
		return fmt.Errorf("%w: friend %s: missing added time", ErrInvalidEvent, f.FriendID)
	}
	switch f.Status {
	case FriendNew, FriendExisting, FriendRemoved:
		return nil
	default:
		return fmt.Errorf("%w: friend %s: unknown status %q", ErrInvalidEvent, f.FriendID, f.Status)
	}
}

// GroupEvent records the child joining a group. Whether the group is risky
// is derived by the classifier and not stored here.
type GroupEvent struct {
	GroupID     string    `json:"groupId" toml:"group_id"`
	ChildID     string    `json:"childId" toml:"child_id"`
	Name        string    `json:"name" toml:"name"`
	Description string    `json:"description" toml:"description"`
	MemberCount int       `json:"memberCount" toml:"member_count"`
	JoinedAt    time.Time `json:"joinedAt" toml:"joined_at"`
}

func (g GroupEvent) Kind() Kind            { return KindGroup }
func (g GroupEvent) Owner() string         { return g.ChildID }
func (g GroupEvent) OccurredAt() time.Time { return g.JoinedAt }

func (g GroupEvent) Key() string {
	return "group:" + g.GroupID + ":" + strconv.FormatInt(g.JoinedAt.UnixNano(), 10)
}

func (g GroupEvent) Validate() error {
	switch {
	case g.GroupID == "":
		return fmt.Errorf("%w: group event without group id", ErrInvalidEvent)
	case g.ChildID == "":
		return fmt.Errorf("%w: group %s: missing child id", ErrInvalidEvent, g.GroupID)
	case g.JoinedAt.IsZero():
		return fmt.Errorf("%w: group %s: missing join time", ErrInvalidEvent, g.GroupID)
	case g.MemberCount < 0:
		return fmt.Errorf("%w: group %s: member count must be non-negative, got %d", ErrInvalidEvent, g.GroupID, g.MemberCount)
	}
	return nil
}
