package alerts

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nixlim/game-guardian/internal/events"
	"github.com/nixlim/game-guardian/internal/logging"
	"github.com/nixlim/game-guardian/internal/metrics"
	"github.com/nixlim/game-guardian/internal/summary"
)

// EventLog is the subset of the event log the engine uses. Commit must run
// check under the child's write lock and skip the append when check fails.
type EventLog interface {
	Commit(e events.Event, check func(snapshot []events.Event) error) error
	Window(childID string, start, end time.Time) ([]events.Event, error)
}

// Engine records events, classifies them and keeps the resulting alerts.
// An event and its alerts are stored together: if classification fails the
// event is not appended.
type Engine struct {
	log        EventLog
	children   ChildLookup
	games      GameLookup
	inbox      *Inbox
	aggregator *summary.Aggregator
	notifiers  []Notifier

	mu  sync.RWMutex
	cfg RuleConfig
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithInbox makes the engine store alerts in inbox instead of a private one.
func WithInbox(inbox *Inbox) EngineOption {
	return func(e *Engine) {
		e.inbox = inbox
	}
}

// WithNotifier registers a notifier called for every new alert.
func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) {
		e.notifiers = append(e.notifiers, n)
	}
}

// NewEngine creates an engine. cfg must be valid.
func NewEngine(log EventLog, children ChildLookup, games GameLookup, cfg RuleConfig, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		log:      log,
		children: children,
		games:    games,
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.inbox == nil {
		e.inbox = NewInbox()
	}
	e.aggregator = summary.NewAggregator(log, children)
	return e, nil
}

// Config returns the active rule configuration.
func (e *Engine) Config() RuleConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// SetConfig replaces the rule configuration for subsequent events. Alerts
// already produced are not re-evaluated.
func (e *Engine) SetConfig(cfg RuleConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	return nil
}

// Inbox returns the alert store.
func (e *Engine) Inbox() *Inbox {
	return e.inbox
}

// Record appends ev to the child's log and returns the alerts it fired.
// On error nothing is recorded.
func (e *Engine) Record(ev events.Event) ([]Alert, error) {
	fired, err := e.record(ev)
	if err != nil {
		reason := rejectionReason(err)
		metrics.RecordRejection(reason)
		l := logging.Warn().Err(err).Str("reason", reason)
		if ev != nil {
			l = l.Str("child_id", ev.Owner()).Str("event", ev.Key())
		}
		l.Msg("event rejected")
		return nil, err
	}

	metrics.RecordEvent(string(ev.Kind()))
	logging.Debug().
		Str("child_id", ev.Owner()).
		Str("event", ev.Key()).
		Int("alerts", len(fired)).
		Msg("event recorded")

	e.inbox.Add(fired...)
	for _, a := range fired {
		metrics.RecordAlert(string(a.Type), string(a.Severity))
		for _, n := range e.notifiers {
			n.Notify(a)
		}
	}
	return fired, nil
}

func (e *Engine) record(ev events.Event) ([]Alert, error) {
	if ev == nil {
		return nil, fmt.Errorf("%w: nil event", events.ErrInvalidEvent)
	}
	child, err := e.children.Child(ev.Owner())
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", events.ErrUnknownChild, ev.Owner())
		}
		return nil, err
	}
	cfg := e.Config()

	var fired []Alert
	err = e.log.Commit(ev, func(snapshot []events.Event) error {
		alerts, err := Classify(child, ev, snapshot, cfg, e.games)
		if err != nil {
			return err
		}
		fired = alerts
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fired, nil
}

// MarkRead marks an alert read. Unknown IDs fail with events.ErrNotFound.
func (e *Engine) MarkRead(alertID string) (Alert, error) {
	return e.inbox.MarkRead(alertID)
}

// Summary builds the weekly activity summary for a child.
func (e *Engine) Summary(childID string, windowEnd time.Time) (summary.ActivitySummary, error) {
	return e.aggregator.Summary(childID, windowEnd)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, events.ErrUnknownChild):
		return "unknown_child"
	case errors.Is(err, events.ErrInvalidEvent):
		return "invalid_event"
	case errors.Is(err, ErrInvalidConfiguration):
		return "invalid_configuration"
	case errors.Is(err, events.ErrNotFound):
		return "not_found"
	case errors.Is(err, events.ErrInvalidProfile):
		return "invalid_profile"
	default:
		return "other"
	}
}
