package alerts

import (
	"fmt"

	"github.com/nixlim/game-guardian/internal/events"
)

// lateNightRule flags sessions that start during quiet hours in the
// child's own timezone. Only the start time matters.
type lateNightRule struct{}

func (lateNightRule) Type() Type { return TypeLateNightGaming }

func (lateNightRule) Enabled(cfg RuleConfig) bool { return cfg.LateNightEnabled }

func (lateNightRule) Check(in input) (*Alert, error) {
	s, ok := in.event.(events.PlaySession)
	if !ok {
		return nil, nil
	}

	local := s.StartedAt.In(in.loc)
	start, end := in.cfg.quietHours()
	if !inQuietHours(local.Hour()*60+local.Minute(), start, end) {
		return nil, nil
	}

	at := local.Format("3:04 PM")
	return newAlert(in, TypeLateNightGaming, SeverityHigh,
		"Late Night Gaming Detected",
		fmt.Sprintf("%s was playing %s at %s, past the recommended bedtime.", in.child.Name, in.game.Name, at),
		LateNightDetails{Game: in.game.Name, Time: at, Duration: s.DurationMin},
	), nil
}

// inQuietHours reports whether minute-of-day m falls in [start, end]. A
// window with start > end wraps past midnight.
func inQuietHours(m, start, end int) bool {
	if start <= end {
		return m >= start && m <= end
	}
	return m >= start || m <= end
}
