package notify

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Event kinds.
const (
	EventExpired = "countdown_expired"
	EventTest    = "test"
)

const testMessage = "This is a test notification from ZuidWest FM Countdown"

// Event is one notification. Every channel that reports the same expiry
// carries the same ID.
type Event struct {
	ID     string
	Kind   string
	Target time.Time // zero for test events
	At     time.Time
}

// NewEvent returns an event of kind for target, stamped with a fresh ULID.
func NewEvent(kind string, target time.Time) Event {
	id := ulid.Make()
	return Event{
		ID:     id.String(),
		Kind:   kind,
		Target: target,
		At:     ulid.Time(id.Time()),
	}
}

// timestamp returns At in UTC as RFC 3339.
func (e Event) timestamp() string {
	return e.At.UTC().Format(time.RFC3339)
}

// target returns Target as RFC 3339, or "" for test events.
func (e Event) target() string {
	if e.Target.IsZero() {
		return ""
	}
	return e.Target.Format(time.RFC3339)
}
