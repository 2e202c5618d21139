package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType is the action part of an event name
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
	EventTypeSent    EventType = "sent"
	EventTypeFailed  EventType = "failed"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeReportGeneration EntityType = "report_generation"
	EntityTypeReport           EntityType = "report"
	EntityTypeBill             EntityType = "recurring_bill"
)

// AllEntityTypes lists every entity a client can subscribe to
var AllEntityTypes = []EntityType{EntityTypeReportGeneration, EntityTypeReport, EntityTypeBill}

// IsValid reports whether e is a known entity type
func (e EntityType) IsValid() bool {
	for _, known := range AllEntityTypes {
		if e == known {
			return true
		}
	}
	return false
}

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string     `json:"type"`      // e.g. "report_generation.created"
	Entity    EntityType `json:"entity"`
	Payload   any        `json:"payload"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload any) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ReportGenerationCreated creates a report_generation.created event
func ReportGenerationCreated(payload any) Event {
	return NewEvent(EventTypeCreated, EntityTypeReportGeneration, payload)
}

// ReportGenerationSent creates a report_generation.sent event
func ReportGenerationSent(payload any) Event {
	return NewEvent(EventTypeSent, EntityTypeReportGeneration, payload)
}

// ReportGenerationFailed creates a report_generation.failed event
func ReportGenerationFailed(payload any) Event {
	return NewEvent(EventTypeFailed, EntityTypeReportGeneration, payload)
}

// ReportCreated creates a report.created event
func ReportCreated(payload any) Event {
	return NewEvent(EventTypeCreated, EntityTypeReport, payload)
}

// ReportUpdated creates a report.updated event
func ReportUpdated(payload any) Event {
	return NewEvent(EventTypeUpdated, EntityTypeReport, payload)
}

// ReportDeleted creates a report.deleted event
func ReportDeleted(payload any) Event {
	return NewEvent(EventTypeDeleted, EntityTypeReport, payload)
}

// BillCreated creates a recurring_bill.created event
func BillCreated(payload any) Event {
	return NewEvent(EventTypeCreated, EntityTypeBill, payload)
}

// BillUpdated creates a recurring_bill.updated event
func BillUpdated(payload any) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBill, payload)
}

// BillDeleted creates a recurring_bill.deleted event
func BillDeleted(payload any) Event {
	return NewEvent(EventTypeDeleted, EntityTypeBill, payload)
}
