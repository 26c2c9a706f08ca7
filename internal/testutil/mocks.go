// Package testutil provides shared fakes of domain interfaces for use in tests
// across the codebase. This follows the Go convention of a shared test
// utility package (like net/http/httptest).
package testutil

import (
	"context"
	"sync"
	"time"

	"hr-approvals/internal/domain"
)

// === Notifier Mock ===

// MockNotifier implements domain.Notifier for testing.
type MockNotifier struct {
	NotifyFn func(ctx context.Context, ev domain.TransitionEvent) error

	mu     sync.Mutex
	Events []domain.TransitionEvent // collected events for assertions
}

// Notify implements the interface method for testing.
func (m *MockNotifier) Notify(ctx context.Context, ev domain.TransitionEvent) error {
	m.mu.Lock()
	m.Events = append(m.Events, ev)
	m.mu.Unlock()
	if m.NotifyFn != nil {
		return m.NotifyFn(ctx, ev)
	}
	return nil
}

// Actions returns the actions of every collected event, in order.
func (m *MockNotifier) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Events))
	for i, ev := range m.Events {
		out[i] = ev.Action
	}
	return out
}

var _ domain.Notifier = (*MockNotifier)(nil)

// === Clock ===

// FixedClock implements domain.Clock with a settable time.
type FixedClock struct {
	mu sync.Mutex
	T  time.Time
}

// NewFixedClock returns a clock frozen at t.
func NewFixedClock(t time.Time) *FixedClock { return &FixedClock{T: t} }

// Now returns the frozen time.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.T
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.T = t
	c.mu.Unlock()
}

var _ domain.Clock = (*FixedClock)(nil)

// Principal builds a domain.Principal bound to tenantID. An empty employeeID
// leaves the principal unlinked.
func Principal(role, tenantID, employeeID string) domain.Principal {
	p := domain.Principal{Subject: "sub-" + employeeID, RawRole: role}
	if tenantID != "" {
		p.TenantID = &tenantID
	}
	if employeeID != "" {
		p.EmployeeID = &employeeID
	}
	return p
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
