package messaging

import (
	"context"
	"time"

	"github.com/evolvix-software/course-economics/internal/domain/payment"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	"github.com/evolvix-software/course-economics/pkg/logger"
)

// DistributionEvents lists every event that changes a mentor's earnings.
var DistributionEvents = []shared.EventType{
	shared.EventDistributionCreated,
	shared.EventDistributionProcessing,
	shared.EventDistributionSettled,
	shared.EventDistributionFailed,
}

// EarningsInvalidator drops cached earnings when a distribution changes.
// It also runs for events relayed from other instances, so a worker-side
// change reaches the API's cache.
func EarningsInvalidator(cache payment.EarningsCache, timeout time.Duration) shared.EventHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return func(event shared.Event) error {
		mentorID, _ := event.Payload()["mentor_id"].(string)
		if mentorID == "" {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return cache.Invalidate(ctx, mentorID)
	}
}

// AuditLogger writes one structured line per event.
func AuditLogger(log *logger.Logger) shared.EventHandler {
	log = log.With(logger.Component("audit"))
	return func(event shared.Event) error {
		log.Info("domain event",
			logger.String("event_type", string(event.EventType())),
			logger.String("aggregate_id", event.AggregateID()),
			logger.Time("occurred_at", event.OccurredAt()),
			logger.Any("payload", event.Payload()),
		)
		return nil
	}
}

// RegisterDefaultHandlers subscribes the handlers both processes share.
// cache may be nil when earnings caching is disabled.
func RegisterDefaultHandlers(bus shared.EventSubscriber, cache payment.EarningsCache, log *logger.Logger) error {
	if cache != nil {
		invalidate := EarningsInvalidator(cache, 0)
		for _, t := range DistributionEvents {
			if err := bus.Subscribe(t, invalidate); err != nil {
				return err
			}
		}
	}
	return bus.SubscribeAll(AuditLogger(log))
}
