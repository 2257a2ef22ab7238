// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents a lifecycle step that the
// surrounding application may want to react to (cache invalidation, mail, audit).
const (
	// Course events
	EventCourseCreated EventType = "course.created"
	EventCourseUpdated EventType = "course.updated"

	// Certificate events
	EventCertificateIssued EventType = "certificate.issued"

	// Payment events
	EventDistributionCreated    EventType = "payment.distribution_created"
	EventDistributionProcessing EventType = "payment.distribution_processing"
	EventDistributionSettled    EventType = "payment.distribution_settled"
	EventDistributionFailed     EventType = "payment.distribution_failed"
	EventInstallmentsPlanned    EventType = "payment.installments_planned"
	EventInstallmentDue         EventType = "payment.installment_due"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event stamped at the given instant.
func NewBaseEvent(eventType EventType, aggregateID string, at time.Time) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   at,
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Course Events
// ═══════════════════════════════════════════════════════════════════════════

// CourseSavedEvent is emitted when a course passes validation and is stored.
type CourseSavedEvent struct {
	BaseEvent
	MentorID string `json:"mentor_id"`
	Tier     string `json:"tier"`
	Price    string `json:"price"`
}

// Payload implements Event interface.
func (e CourseSavedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"mentor_id": e.MentorID,
		"tier":      e.Tier,
		"price":     e.Price,
	}
}

// NewCourseSavedEvent creates a course.created or course.updated event.
func NewCourseSavedEvent(created bool, courseID, mentorID, tier, price string, at time.Time) CourseSavedEvent {
	eventType := EventCourseUpdated
	if created {
		eventType = EventCourseCreated
	}
	return CourseSavedEvent{
		BaseEvent: NewBaseEvent(eventType, courseID, at),
		MentorID:  mentorID,
		Tier:      tier,
		Price:     price,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Certificate Events
// ═══════════════════════════════════════════════════════════════════════════

// CertificateIssuedEvent is emitted once per (student, course) pair.
type CertificateIssuedEvent struct {
	BaseEvent
	StudentID     string `json:"student_id"`
	CertificateID string `json:"certificate_id"`
	MentorSigned  bool   `json:"mentor_signed"`
}

// Payload implements Event interface.
func (e CertificateIssuedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":     e.StudentID,
		"certificate_id": e.CertificateID,
		"mentor_signed":  e.MentorSigned,
	}
}

// NewCertificateIssuedEvent creates a new CertificateIssuedEvent.
func NewCertificateIssuedEvent(courseID, studentID, certificateID string, mentorSigned bool, at time.Time) CertificateIssuedEvent {
	return CertificateIssuedEvent{
		BaseEvent:     NewBaseEvent(EventCertificateIssued, courseID, at),
		StudentID:     studentID,
		CertificateID: certificateID,
		MentorSigned:  mentorSigned,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Payment Events
// ═══════════════════════════════════════════════════════════════════════════

// DistributionEvent is emitted whenever a distribution is created or changes status.
type DistributionEvent struct {
	BaseEvent
	MentorID  string `json:"mentor_id"`
	CourseID  string `json:"course_id"`
	Status    string `json:"status"`
	Amount    string `json:"amount"`
	MentorCut string `json:"mentor_cut"`
}

// Payload implements Event interface.
func (e DistributionEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"mentor_id":  e.MentorID,
		"course_id":  e.CourseID,
		"status":     e.Status,
		"amount":     e.Amount,
		"mentor_cut": e.MentorCut,
	}
}

// NewDistributionEvent creates a new DistributionEvent.
func NewDistributionEvent(eventType EventType, distributionID, mentorID, courseID, status, amount, mentorCut string, at time.Time) DistributionEvent {
	return DistributionEvent{
		BaseEvent: NewBaseEvent(eventType, distributionID, at),
		MentorID:  mentorID,
		CourseID:  courseID,
		Status:    status,
		Amount:    amount,
		MentorCut: mentorCut,
	}
}

// InstallmentEvent covers planned schedules and due reminders.
type InstallmentEvent struct {
	BaseEvent
	StudentID         string    `json:"student_id"`
	InstallmentNumber int       `json:"installment_number"`
	TotalInstallments int       `json:"total_installments"`
	Amount            string    `json:"amount"`
	DueDate           time.Time `json:"due_date"`
}

// Payload implements Event interface.
func (e InstallmentEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":         e.StudentID,
		"installment_number": e.InstallmentNumber,
		"total_installments": e.TotalInstallments,
		"amount":             e.Amount,
		"due_date":           e.DueDate,
	}
}

// NewInstallmentEvent creates a new InstallmentEvent keyed by course ID.
func NewInstallmentEvent(eventType EventType, courseID, studentID string, number, total int, amount string, dueDate, at time.Time) InstallmentEvent {
	return InstallmentEvent{
		BaseEvent:         NewBaseEvent(eventType, courseID, at),
		StudentID:         studentID,
		InstallmentNumber: number,
		TotalInstallments: total,
		Amount:            amount,
		DueDate:           dueDate,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEventEnvelope serializes an event payload into an envelope.
func NewEventEnvelope(id string, event Event) (EventEnvelope, error) {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return EventEnvelope{}, err
	}
	return EventEnvelope{
		ID:          id,
		Type:        event.EventType(),
		AggregateID: event.AggregateID(),
		Timestamp:   event.OccurredAt(),
		Version:     1,
		Payload:     payload,
	}, nil
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) error { return nil }
