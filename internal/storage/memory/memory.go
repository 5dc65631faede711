// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caseflow/intake/internal/domain/caserecord"
	"github.com/caseflow/intake/internal/domain/run"
	"github.com/caseflow/intake/internal/storage"
	"github.com/caseflow/intake/internal/survey"
)

// Store holds runs, cases and events behind a single lock. All reads and
// writes deep-copy so callers can never mutate stored state.
type Store struct {
	mu     sync.RWMutex
	runs   map[string]run.Run
	cases  map[uuid.UUID]caserecord.Case
	events map[uuid.UUID][]caserecord.Event
}

var _ storage.RunStore = (*Store)(nil)
var _ storage.CaseStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		runs:   make(map[string]run.Run),
		cases:  make(map[uuid.UUID]caserecord.Case),
		events: make(map[uuid.UUID][]caserecord.Event),
	}
}

// RunStore implementation ----------------------------------------------------

func (s *Store) CreateRun(_ context.Context, r run.Run) error {
	if r.ID == "" {
		return fmt.Errorf("create run: id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[r.ID]; exists {
		return fmt.Errorf("run %s: %w", r.ID, storage.ErrAlreadyExists)
	}

	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}

	s.runs[r.ID] = cloneRun(r)
	return nil
}

func (s *Store) GetRun(_ context.Context, id string) (run.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return run.Run{}, fmt.Errorf("run %s: %w", id, storage.ErrNotFound)
	}
	return cloneRun(r), nil
}

func (s *Store) ReplaceRun(_ context.Context, r run.Run) (run.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.runs[r.ID]
	if !ok {
		return run.Run{}, fmt.Errorf("run %s: %w", r.ID, storage.ErrNotFound)
	}

	r.CreatedAt = original.CreatedAt
	r.UpdatedAt = time.Now().UTC()

	stored := cloneRun(r)
	s.runs[r.ID] = stored
	return cloneRun(stored), nil
}

func (s *Store) ListIdleRuns(_ context.Context, status run.Status, updatedBefore time.Time) ([]run.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []run.Run
	for _, r := range s.runs {
		if r.Status == status && r.UpdatedAt.Before(updatedBefore) {
			result = append(result, cloneRun(r))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.Before(result[j].UpdatedAt) })
	return result, nil
}

// CaseStore implementation ---------------------------------------------------

func (s *Store) CreateCase(_ context.Context, c caserecord.Case) (caserecord.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	} else if _, exists := s.cases[c.ID]; exists {
		return caserecord.Case{}, fmt.Errorf("case %s: %w", c.ID, storage.ErrAlreadyExists)
	}
	if c.ReceivedAt.IsZero() {
		c.ReceivedAt = time.Now().UTC()
	}

	s.cases[c.ID] = c
	return c, nil
}

func (s *Store) GetCase(_ context.Context, id uuid.UUID) (caserecord.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cases[id]
	if !ok {
		return caserecord.Case{}, fmt.Errorf("case %s: %w", id, storage.ErrNotFound)
	}
	return c, nil
}

func (s *Store) LatestCase(_ context.Context) (caserecord.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		latest caserecord.Case
		found  bool
	)
	for _, c := range s.cases {
		if !found || c.ReceivedAt.After(latest.ReceivedAt) {
			latest = c
			found = true
		}
	}
	if !found {
		return caserecord.Case{}, storage.ErrNotFound
	}
	return latest, nil
}

func (s *Store) AppendEvent(_ context.Context, e caserecord.Event) (caserecord.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cases[e.CaseID]; !ok {
		return caserecord.Event{}, fmt.Errorf("case %s: %w", e.CaseID, storage.ErrNotFound)
	}

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	e.Payload = cloneMap(e.Payload)

	s.events[e.CaseID] = append(s.events[e.CaseID], e)
	return cloneEvent(e), nil
}

func (s *Store) ListEvents(_ context.Context, caseID uuid.UUID) ([]caserecord.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.events[caseID]
	result := make([]caserecord.Event, 0, len(stored))
	for _, e := range stored {
		result = append(result, cloneEvent(e))
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].OccurredAt.Before(result[j].OccurredAt) })
	return result, nil
}

// clone helpers --------------------------------------------------------------

func cloneRun(r run.Run) run.Run {
	out := r
	if r.History != nil {
		out.History = append([]survey.Step(nil), r.History...)
	}
	if r.AnswersByID != nil {
		out.AnswersByID = make(map[string]survey.Answer, len(r.AnswersByID))
		for k, v := range r.AnswersByID {
			if v.Score != nil {
				score := *v.Score
				v.Score = &score
			}
			out.AnswersByID[k] = v
		}
	}
	if r.Summary != nil {
		summary := *r.Summary
		if r.Summary.StillPain != nil {
			still := *r.Summary.StillPain
			summary.StillPain = &still
		}
		if r.Summary.PainScale != nil {
			scale := *r.Summary.PainScale
			summary.PainScale = &scale
		}
		out.Summary = &summary
	}
	return out
}

func cloneEvent(e caserecord.Event) caserecord.Event {
	out := e
	out.Payload = cloneMap(e.Payload)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = cloneMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}
