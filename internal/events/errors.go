package events

import "errors"

// Error kinds shared by the event log, classifier and aggregator. Callers
// match them with errors.Is; the returned errors carry context.
var (
	ErrUnknownChild   = errors.New("unknown child")
	ErrInvalidEvent   = errors.New("invalid event")
	ErrNotFound       = errors.New("not found")
	ErrInvalidProfile = errors.New("invalid child profile")
)
