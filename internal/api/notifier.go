package api

import (
	"context"
	"log/slog"

	"hr-approvals/internal/domain"
)

// LogNotifier records transition events in the structured log. It stands in
// for email/alert delivery, which lives outside this service.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "notifier")}
}

// Notify implements domain.Notifier.
func (n *LogNotifier) Notify(ctx context.Context, ev domain.TransitionEvent) error {
	n.logger.InfoContext(ctx, "leave request transition",
		"action", ev.Action,
		"request_id", ev.Request.ID,
		"employee_id", ev.Request.EmployeeID,
		"tenant_id", ev.Request.TenantID,
		"from", ev.From,
		"to", ev.Request.Status,
		"actor", ev.ActorID,
		"occurred_at", ev.OccurredAt)
	return nil
}

var _ domain.Notifier = (*LogNotifier)(nil)
