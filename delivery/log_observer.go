package delivery

import (
	"context"

	"github.com/marcelsud/webhook-dispatch/webhook"
	"github.com/rs/zerolog"
)

// LogObserver writes every notification to the application log
type LogObserver struct {
	logger zerolog.Logger
}

// NewLogObserver creates a logging sink for notifications
func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// Notify implements webhook.Observer
func (o *LogObserver) Notify(ctx context.Context, n webhook.Notification) {
	switch n.Kind {
	case webhook.DeliverySucceeded:
		o.logger.Debug().
			Str("notification", n.Kind.String()).
			Str("webhook_id", n.WebhookID).
			Str("event_id", n.EventID).
			Str("job_id", n.JobID).
			Int("attempt", n.Attempt).
			Int("status_code", n.StatusCode).
			Dur("duration", n.Duration).
			Msg("webhook delivered")
	case webhook.DeliveryFailed:
		o.logger.Warn().
			Str("notification", n.Kind.String()).
			Str("webhook_id", n.WebhookID).
			Str("url", n.URL).
			Str("event_id", n.EventID).
			Str("job_id", n.JobID).
			Int("attempt", n.Attempt).
			Int("status_code", n.StatusCode).
			Int64("failure_count", n.FailureCount).
			Bool("will_retry", n.WillRetry).
			Dur("retry_delay", n.RetryDelay).
			Bool("terminal", n.Terminal).
			Err(n.Err).
			Msg("webhook delivery failed")
	case webhook.WebhookDisabled:
		o.logger.Info().
			Str("notification", n.Kind.String()).
			Str("webhook_id", n.WebhookID).
			Str("url", n.URL).
			Str("reason", n.Reason).
			Int64("failure_count", n.FailureCount).
			Msg("webhook disabled")
	}
}
