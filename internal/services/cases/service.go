// Package cases manages case records and their append-only event logs.
package cases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/caseflow/intake/internal/domain/caserecord"
	"github.com/caseflow/intake/internal/storage"
	"github.com/caseflow/intake/pkg/logger"
)

// Service owns case lifecycle operations. All mutations go through the event
// log; the case row itself only ever holds the current snapshot.
type Service struct {
	store  storage.CaseStore
	logger *logger.Logger
}

// NewService creates a case service.
func NewService(store storage.CaseStore, log *logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

// Timeline is a case together with its full event history.
type Timeline struct {
	Case   caserecord.Case    `json:"case"`
	Events []caserecord.Event `json:"events"`
}

// IntakeReport is the distilled content of one inbound report.
type IntakeReport struct {
	ExternalRef string
	Source      caserecord.SourceType
	ReceivedAt  time.Time
	Raw         map[string]any
}

// CreateFromIntake opens a case for an inbound report and seeds its event log
// with the creation and intake events.
func (s *Service) CreateFromIntake(ctx context.Context, report IntakeReport, actor caserecord.ActorType, actorID string) (Timeline, error) {
	if report.ReceivedAt.IsZero() {
		report.ReceivedAt = time.Now().UTC()
	}
	if report.Source == "" {
		report.Source = caserecord.SourceSpontaneous
	}

	c, err := s.store.CreateCase(ctx, caserecord.Case{
		ID:         uuid.New(),
		ReceivedAt: report.ReceivedAt,
		Status:     caserecord.StatusOpen,
	})
	if err != nil {
		return Timeline{}, fmt.Errorf("create case: %w", err)
	}

	created := caserecord.Event{
		CaseID:     c.ID,
		Type:       caserecord.EventCaseCreated,
		OccurredAt: report.ReceivedAt,
		ActorType:  actor,
		ActorID:    actorID,
		Payload: map[string]any{
			"schema_version": caserecord.SchemaCaseCreated,
			"status":         string(c.Status),
		},
	}
	intake := caserecord.Event{
		CaseID:     c.ID,
		Type:       caserecord.EventIntakeReceived,
		OccurredAt: report.ReceivedAt,
		ActorType:  actor,
		ActorID:    actorID,
		Payload: map[string]any{
			"schema_version": caserecord.SchemaIntakeReceived,
			"source":         string(report.Source),
		},
	}
	if report.ExternalRef != "" {
		intake.Payload["external_ref"] = report.ExternalRef
	}
	if report.Raw != nil {
		intake.Payload["report"] = report.Raw
	}

	var events []caserecord.Event
	for _, e := range []caserecord.Event{created, intake} {
		appended, err := s.AppendEvent(ctx, e)
		if err != nil {
			return Timeline{}, err
		}
		events = append(events, appended)
	}

	s.logger.WithField("case_id", c.ID.String()).Info("case opened from intake")
	return Timeline{Case: c, Events: events}, nil
}

// AppendEvent validates and stores one event. Payloads must survive a JSON
// round trip since that is how they are persisted and served.
func (s *Service) AppendEvent(ctx context.Context, e caserecord.Event) (caserecord.Event, error) {
	if e.CaseID == uuid.Nil {
		return caserecord.Event{}, fmt.Errorf("event requires a case id")
	}
	if e.Type == "" {
		return caserecord.Event{}, fmt.Errorf("event requires a type")
	}
	if e.ActorType == "" {
		e.ActorType = caserecord.ActorSystem
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if _, err := json.Marshal(e.Payload); err != nil {
		return caserecord.Event{}, fmt.Errorf("event payload not serializable: %w", err)
	}

	appended, err := s.store.AppendEvent(ctx, e)
	if err != nil {
		return caserecord.Event{}, fmt.Errorf("append event: %w", err)
	}
	return appended, nil
}

// Get returns a case with its event history.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Timeline, error) {
	c, err := s.store.GetCase(ctx, id)
	if err != nil {
		return Timeline{}, err
	}
	events, err := s.store.ListEvents(ctx, c.ID)
	if err != nil {
		return Timeline{}, err
	}
	return Timeline{Case: c, Events: events}, nil
}

// Latest returns the most recently received case with its event history.
func (s *Service) Latest(ctx context.Context) (Timeline, error) {
	c, err := s.store.LatestCase(ctx)
	if err != nil {
		return Timeline{}, err
	}
	events, err := s.store.ListEvents(ctx, c.ID)
	if err != nil {
		return Timeline{}, err
	}
	return Timeline{Case: c, Events: events}, nil
}
