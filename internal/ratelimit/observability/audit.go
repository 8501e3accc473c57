// Package observability records denied requests as audit events.
package observability

import (
	"context"
	"log/slog"

	"storefront/internal/platform/middleware"
	"storefront/internal/ratelimit/models"
	"storefront/internal/ratelimit/ports"
)

// EventRateLimitExceeded names the audit event emitted for every denial.
const EventRateLimitExceeded = "rate_limit_exceeded"

// LogAudit writes an audit event to the structured logger at Info, enriched
// with the request ID. Admission denials are expected traffic, not errors.
func LogAudit(ctx context.Context, logger *slog.Logger, event string, attrs ...any) {
	if logger == nil {
		return
	}
	if requestID := middleware.GetRequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	args := append(attrs, "event", event, "log_type", "audit")
	logger.InfoContext(ctx, event, args...)
}

// LogPublisher is the default ViolationPublisher: the audit trail is the log.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, v *models.Violation) {
	LogAudit(ctx, p.logger, EventRateLimitExceeded,
		"violation_id", v.ID,
		"identity", v.Identity,
		"class", v.Class,
		"method", v.Method,
		"path", v.Path,
		"limit", v.Limit,
		"window_seconds", v.WindowSeconds,
	)
}

// Fanout publishes to every non-nil publisher in order.
type Fanout []ports.ViolationPublisher

func (f Fanout) Publish(ctx context.Context, v *models.Violation) {
	for _, p := range f {
		if p != nil {
			p.Publish(ctx, v)
		}
	}
}
