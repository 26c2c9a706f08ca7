package domain

import (
	"context"
	"time"
)

// TransitionEvent describes a successful workflow transition for side-effect
// collaborators (email, alerts).
type TransitionEvent struct {
	Action     string
	From       RequestStatus
	Request    LeaveRequest
	ActorID    string
	OccurredAt time.Time
}

// Notifier delivers transition events to the employee, supervisor, and HR
// distribution list. It is invoked by callers after the transition commits,
// never by the workflow itself.
type Notifier interface {
	Notify(ctx context.Context, ev TransitionEvent) error
}

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using wall-clock UTC time.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
