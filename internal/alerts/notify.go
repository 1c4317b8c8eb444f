package alerts

import (
	"github.com/nixlim/game-guardian/internal/logging"
)

// Notifier receives each alert once, right after it is stored. Notifiers
// are called synchronously from Engine.Record and must not block;
// delivery to devices is the host's concern.
type Notifier interface {
	Notify(alert Alert)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(alert Alert)

func (f NotifierFunc) Notify(alert Alert) { f(alert) }

// LogNotifier writes every alert to the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(alert Alert) {
	logging.Info().
		Str("alert_id", alert.ID).
		Str("child_id", alert.ChildID).
		Str("type", string(alert.Type)).
		Str("severity", string(alert.Severity)).
		Str("title", truncate(alert.Title, 60)).
		Time("occurred_at", alert.Timestamp).
		Msg("alert fired")
}

// truncate shortens s to at most n runes for log fields.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
