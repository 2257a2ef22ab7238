package command

import (
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	"github.com/evolvix-software/course-economics/pkg/logger"
)

func publisherOrNop(p shared.EventPublisher) shared.EventPublisher {
	if p == nil {
		return shared.NopPublisher{}
	}
	return p
}

func clockOrSystem(c shared.Clock) shared.Clock {
	if c == nil {
		return shared.SystemClock{}
	}
	return c
}

func loggerOrNop(l *logger.Logger) *logger.Logger {
	if l == nil {
		return logger.Nop()
	}
	return l
}

// publish sends an event after the state change is stored. A publish failure
// is logged, never returned: the write already happened.
func publish(p shared.EventPublisher, log *logger.Logger, event shared.Event) {
	if err := p.Publish(event); err != nil {
		log.Warn("failed to publish event",
			logger.String("event_type", string(event.EventType())),
			logger.String("aggregate_id", event.AggregateID()),
			logger.Err(err),
		)
	}
}
