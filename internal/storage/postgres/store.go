// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/caseflow/intake/internal/domain/caserecord"
	"github.com/caseflow/intake/internal/domain/run"
	"github.com/caseflow/intake/internal/storage"
	"github.com/caseflow/intake/internal/survey"
)

// Store implements the storage interfaces using the provided database handle.
type Store struct {
	db *sql.DB
}

var _ storage.RunStore = (*Store)(nil)
var _ storage.CaseStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- RunStore ---------------------------------------------------------------

func (s *Store) CreateRun(ctx context.Context, r run.Run) error {
	if r.ID == "" {
		return errors.New("run id required")
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}

	historyJSON, answersJSON, summaryJSON, err := marshalRunState(r)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO survey_runs (id, version, status, section, cursor_qid, history, answers, summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.ID, r.Version, r.Status, r.Section, r.Cursor, historyJSON, answersJSON, summaryJSON, r.CreatedAt, r.UpdatedAt)
	return err
}

func (s *Store) GetRun(ctx context.Context, id string) (run.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, version, status, section, cursor_qid, history, answers, summary, created_at, updated_at
		FROM survey_runs
		WHERE id = $1
	`, id)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return run.Run{}, fmt.Errorf("run %s: %w", id, storage.ErrNotFound)
	}
	return r, err
}

func (s *Store) ReplaceRun(ctx context.Context, r run.Run) (run.Run, error) {
	r.UpdatedAt = time.Now().UTC()

	historyJSON, answersJSON, summaryJSON, err := marshalRunState(r)
	if err != nil {
		return run.Run{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE survey_runs
		SET status = $2, section = $3, cursor_qid = $4, history = $5, answers = $6, summary = $7, updated_at = $8
		WHERE id = $1
	`, r.ID, r.Status, r.Section, r.Cursor, historyJSON, answersJSON, summaryJSON, r.UpdatedAt)
	if err != nil {
		return run.Run{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return run.Run{}, fmt.Errorf("run %s: %w", r.ID, storage.ErrNotFound)
	}
	return r, nil
}

func (s *Store) ListIdleRuns(ctx context.Context, status run.Status, updatedBefore time.Time) ([]run.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, version, status, section, cursor_qid, history, answers, summary, created_at, updated_at
		FROM survey_runs
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at
	`, status, updatedBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []run.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (run.Run, error) {
	var (
		r          run.Run
		historyRaw []byte
		answersRaw []byte
		summaryRaw []byte
	)
	if err := row.Scan(&r.ID, &r.Version, &r.Status, &r.Section, &r.Cursor, &historyRaw, &answersRaw, &summaryRaw, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return run.Run{}, err
	}
	if len(historyRaw) > 0 {
		if err := json.Unmarshal(historyRaw, &r.History); err != nil {
			return run.Run{}, fmt.Errorf("decode run history: %w", err)
		}
	}
	if len(answersRaw) > 0 {
		if err := json.Unmarshal(answersRaw, &r.AnswersByID); err != nil {
			return run.Run{}, fmt.Errorf("decode run answers: %w", err)
		}
	}
	if len(summaryRaw) > 0 {
		var summary survey.Summary
		if err := json.Unmarshal(summaryRaw, &summary); err != nil {
			return run.Run{}, fmt.Errorf("decode run summary: %w", err)
		}
		r.Summary = &summary
	}
	return r, nil
}

func marshalRunState(r run.Run) (history, answers, summary []byte, err error) {
	if history, err = json.Marshal(r.History); err != nil {
		return nil, nil, nil, err
	}
	if answers, err = json.Marshal(r.AnswersByID); err != nil {
		return nil, nil, nil, err
	}
	if r.Summary != nil {
		if summary, err = json.Marshal(r.Summary); err != nil {
			return nil, nil, nil, err
		}
	}
	return history, answers, summary, nil
}

// --- CaseStore --------------------------------------------------------------

func (s *Store) CreateCase(ctx context.Context, c caserecord.Case) (caserecord.Case, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.ReceivedAt.IsZero() {
		c.ReceivedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cases (id, received_at, initial_awareness_at, status)
		VALUES ($1, $2, $3, $4)
	`, c.ID, c.ReceivedAt, c.InitialAwarenessAt, c.Status)
	if err != nil {
		return caserecord.Case{}, err
	}
	return c, nil
}

func (s *Store) GetCase(ctx context.Context, id uuid.UUID) (caserecord.Case, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, received_at, initial_awareness_at, status
		FROM cases
		WHERE id = $1
	`, id)

	var c caserecord.Case
	if err := row.Scan(&c.ID, &c.ReceivedAt, &c.InitialAwarenessAt, &c.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return caserecord.Case{}, fmt.Errorf("case %s: %w", id, storage.ErrNotFound)
		}
		return caserecord.Case{}, err
	}
	return c, nil
}

func (s *Store) LatestCase(ctx context.Context) (caserecord.Case, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, received_at, initial_awareness_at, status
		FROM cases
		ORDER BY received_at DESC
		LIMIT 1
	`)

	var c caserecord.Case
	if err := row.Scan(&c.ID, &c.ReceivedAt, &c.InitialAwarenessAt, &c.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return caserecord.Case{}, storage.ErrNotFound
		}
		return caserecord.Case{}, err
	}
	return c, nil
}

func (s *Store) AppendEvent(ctx context.Context, e caserecord.Event) (caserecord.Event, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	payloadJSON, err := json.Marshal(e.Payload)
	if err != nil {
		return caserecord.Event{}, fmt.Errorf("encode event payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO case_event_log (id, case_id, event_type, occurred_at, actor_type, actor_id, reason, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.CaseID, e.Type, e.OccurredAt, e.ActorType, e.ActorID, e.Reason, payloadJSON)
	if err != nil {
		return caserecord.Event{}, err
	}
	return e, nil
}

func (s *Store) ListEvents(ctx context.Context, caseID uuid.UUID) ([]caserecord.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, case_id, event_type, occurred_at, actor_type, actor_id, reason, payload
		FROM case_event_log
		WHERE case_id = $1
		ORDER BY occurred_at, seq
	`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []caserecord.Event
	for rows.Next() {
		var (
			e          caserecord.Event
			payloadRaw []byte
		)
		if err := rows.Scan(&e.ID, &e.CaseID, &e.Type, &e.OccurredAt, &e.ActorType, &e.ActorID, &e.Reason, &payloadRaw); err != nil {
			return nil, err
		}
		if len(payloadRaw) > 0 {
			if err := json.Unmarshal(payloadRaw, &e.Payload); err != nil {
				return nil, fmt.Errorf("decode event payload: %w", err)
			}
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
