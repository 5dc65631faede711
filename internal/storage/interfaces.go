// Package storage defines the persistence interfaces for runs and cases.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/caseflow/intake/internal/domain/caserecord"
	"github.com/caseflow/intake/internal/domain/run"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when creating a record whose id is taken.
var ErrAlreadyExists = errors.New("already exists")

// RunStore persists survey runs.
type RunStore interface {
	// CreateRun inserts a new run; the id must be unused.
	CreateRun(ctx context.Context, r run.Run) error
	GetRun(ctx context.Context, id string) (run.Run, error)
	// ReplaceRun overwrites an existing run and bumps its UpdatedAt.
	ReplaceRun(ctx context.Context, r run.Run) (run.Run, error)
	// ListIdleRuns returns runs in the given status last updated before the
	// cutoff. Used by the stale-run janitor.
	ListIdleRuns(ctx context.Context, status run.Status, updatedBefore time.Time) ([]run.Run, error)
}

// CaseStore persists cases and their append-only event log.
type CaseStore interface {
	CreateCase(ctx context.Context, c caserecord.Case) (caserecord.Case, error)
	GetCase(ctx context.Context, id uuid.UUID) (caserecord.Case, error)
	// LatestCase returns the most recently received case.
	LatestCase(ctx context.Context) (caserecord.Case, error)

	AppendEvent(ctx context.Context, e caserecord.Event) (caserecord.Event, error)
	// ListEvents returns a case's events ordered by occurrence time ascending.
	ListEvents(ctx context.Context, caseID uuid.UUID) ([]caserecord.Event, error)
}
