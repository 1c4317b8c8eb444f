package alerts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nixlim/game-guardian/internal/validation"
)

// ErrInvalidConfiguration is returned when rule configuration cannot be
// applied: negative thresholds, unparseable quiet hours, a broken rating
// scale, or a game whose rating the scale does not list.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// RatingLevel is one step on the age rating scale.
type RatingLevel struct {
	Label  string `toml:"label" json:"label" validate:"required"`
	MinAge int    `toml:"min_age" json:"minAge" validate:"gte=0"`
}

// RuleConfig is the policy the classifier evaluates against. It is passed
// explicitly to every call; nothing in this package holds policy state.
type RuleConfig struct {
	// PatternDetection switches every rule off when false.
	PatternDetection bool `toml:"pattern_detection" json:"patternDetection"`

	// QuietHoursStart and QuietHoursEnd are "HH:MM" in the child's local
	// time. Both ends are inclusive; start > end wraps past midnight.
	QuietHoursStart string `toml:"quiet_hours_start" json:"quietHoursStart" validate:"required,datetime=15:04"`
	QuietHoursEnd   string `toml:"quiet_hours_end" json:"quietHoursEnd" validate:"required,datetime=15:04"`

	RapidFriendsThreshold   int `toml:"rapid_friends_threshold" json:"rapidFriendsThreshold" validate:"gte=0"`
	RapidFriendsWindowHours int `toml:"rapid_friends_window_hours" json:"rapidFriendsWindowHours" validate:"gte=0"`
	OutOfAgeMinDurationMin  int `toml:"out_of_age_min_duration_min" json:"outOfAgeMinDurationMin" validate:"gte=0"`

	RiskKeywords []string `toml:"risk_keywords" json:"riskKeywords" validate:"dive,required"`

	LateNightEnabled    bool `toml:"late_night_enabled" json:"lateNightEnabled"`
	OutOfAgeEnabled     bool `toml:"out_of_age_enabled" json:"outOfAgeEnabled"`
	RapidFriendsEnabled bool `toml:"rapid_friends_enabled" json:"rapidFriendsEnabled"`
	RiskyGroupEnabled   bool `toml:"risky_group_enabled" json:"riskyGroupEnabled"`

	// RatingScale is ordered from least to most restrictive.
	RatingScale []RatingLevel `toml:"ratings" json:"ratingScale" validate:"required,min=1,dive"`
}

// DefaultRatingScale returns the platform's rating labels.
func DefaultRatingScale() []RatingLevel {
	return []RatingLevel{
		{Label: "All Ages", MinAge: 0},
		{Label: "9+", MinAge: 9},
		{Label: "13+", MinAge: 13},
		{Label: "17+", MinAge: 17},
	}
}

// DefaultRuleConfig returns the default policy with every rule enabled.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		PatternDetection:        true,
		QuietHoursStart:         "00:00",
		QuietHoursEnd:           "05:59",
		RapidFriendsThreshold:   3,
		RapidFriendsWindowHours: 24,
		OutOfAgeMinDurationMin:  10,
		RiskKeywords:            []string{"free robux", "trade account", "sell account"},
		LateNightEnabled:        true,
		OutOfAgeEnabled:         true,
		RapidFriendsEnabled:     true,
		RiskyGroupEnabled:       true,
		RatingScale:             DefaultRatingScale(),
	}
}

// Validate checks every field and reports all problems at once. The
// returned error wraps ErrInvalidConfiguration.
func (c RuleConfig) Validate() error {
	var errs []string
	if err := validation.Struct(c); err != nil {
		errs = append(errs, err.Error())
	}

	seen := make(map[string]bool, len(c.RatingScale))
	for i, lvl := range c.RatingScale {
		key := strings.ToLower(lvl.Label)
		if lvl.Label != "" && seen[key] {
			errs = append(errs, fmt.Sprintf("ratings: duplicate label %q", lvl.Label))
		}
		seen[key] = true
		if i > 0 && lvl.MinAge < c.RatingScale[i-1].MinAge {
			errs = append(errs, fmt.Sprintf("ratings: %q (min_age %d) is listed after %q (min_age %d)",
				lvl.Label, lvl.MinAge, c.RatingScale[i-1].Label, c.RatingScale[i-1].MinAge))
		}
	}

	if c.RapidFriendsEnabled && c.RapidFriendsWindowHours == 0 {
		errs = append(errs, "rapid_friends_window_hours must be positive when rapid_friends_enabled is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(errs, "; "))
	}
	return nil
}

// quietHours returns the window as minutes after midnight. Validate must
// have succeeded.
func (c RuleConfig) quietHours() (start, end int) {
	return clockMinutes(c.QuietHoursStart), clockMinutes(c.QuietHoursEnd)
}

func clockMinutes(s string) int {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

func (c RuleConfig) rapidFriendsWindow() time.Duration {
	return time.Duration(c.RapidFriendsWindowHours) * time.Hour
}

// minAgeFor resolves a rating label against the scale, case-insensitively.
func (c RuleConfig) minAgeFor(label string) (int, error) {
	for _, lvl := range c.RatingScale {
		if strings.EqualFold(lvl.Label, label) {
			return lvl.MinAge, nil
		}
	}
	return 0, fmt.Errorf("%w: age rating %q is not on the rating scale", ErrInvalidConfiguration, label)
}
