// Package caserecord defines the case and its append-only event log. A case
// is the current-state snapshot of a report; every mutation is recorded as an
// immutable event so the full history stays auditable.
package caserecord

import (
	"time"

	"github.com/google/uuid"
)

// Status is the current workflow state of a case.
type Status string

const (
	StatusOpen      Status = "open"
	StatusFollowUp  Status = "follow_up"
	StatusReady     Status = "ready"
	StatusSubmitted Status = "submitted"
	StatusClosed    Status = "closed"
)

// EventType identifies what happened to a case.
type EventType string

const (
	EventCaseCreated      EventType = "case.created"
	EventIntakeReceived   EventType = "intake.received"
	EventFieldSet         EventType = "field.set"
	EventFieldCleared     EventType = "field.cleared"
	EventNoteAdded        EventType = "note.added"
	EventAwarenessSet     EventType = "case.awareness_set"
	EventAwarenessAmended EventType = "case.awareness_amended"
)

// ActorType identifies who caused an event.
type ActorType string

const (
	ActorUser   ActorType = "user"
	ActorSystem ActorType = "system"
	ActorAPI    ActorType = "api"
)

// SourceType is the report source ontology.
type SourceType string

const (
	SourceSpontaneous SourceType = "spontaneous"
	SourceLiterature  SourceType = "literature"
	SourcePartner     SourceType = "partner"
	SourceStudy       SourceType = "study"
)

// ReporterType is the reporter qualification ontology.
type ReporterType string

const (
	ReporterConsumer ReporterType = "consumer"
	ReporterHCP      ReporterType = "HCP"
)

// Payload schema versions stamped into event payloads.
const (
	SchemaCaseCreated    = "case.created.v1"
	SchemaIntakeReceived = "intake.received.v1"
)

// Case is the current-state record.
type Case struct {
	ID         uuid.UUID `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
	// InitialAwarenessAt is set once and never overwritten; amendments are
	// recorded as events.
	InitialAwarenessAt *time.Time `json:"initial_awareness_at"`
	Status             Status     `json:"status"`
}

// Event is one immutable row of a case's history.
type Event struct {
	ID         uuid.UUID      `json:"id"`
	CaseID     uuid.UUID      `json:"case_id"`
	Type       EventType      `json:"event_type"`
	OccurredAt time.Time      `json:"occurred_at"`
	ActorType  ActorType      `json:"actor_type"`
	ActorID    string         `json:"actor_id,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Payload    map[string]any `json:"payload"`
}

// ParseSource maps a raw source string onto the ontology, defaulting to
// spontaneous for anything unrecognized.
func ParseSource(raw string) SourceType {
	switch SourceType(raw) {
	case SourceLiterature, SourcePartner, SourceStudy, SourceSpontaneous:
		return SourceType(raw)
	default:
		return SourceSpontaneous
	}
}
