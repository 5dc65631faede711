package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflow/intake/internal/domain/caserecord"
	"github.com/caseflow/intake/internal/domain/run"
	"github.com/caseflow/intake/internal/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

var runColumns = []string{"id", "version", "status", "section", "cursor_qid", "history", "answers", "summary", "created_at", "updated_at"}

func TestCreateRun(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO survey_runs").
		WithArgs("run-1", "0.1.0", run.StatusActive, "min_criteria", "q1",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.CreateRun(context.Background(), run.Run{
		ID:      "run-1",
		Version: "0.1.0",
		Status:  run.StatusActive,
		Section: "min_criteria",
		Cursor:  "q1",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRun(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(runColumns).AddRow(
			"run-1", "0.1.0", "active", "abdominal", "q5",
			[]byte(`[{"section":"abdominal","question_id":"q1","answer":"a"}]`),
			[]byte(`{"abdominal/q1":{"type":"single_choice","key":"a","label":"Exact date, if known"}}`),
			nil, now, now,
		)
		mock.ExpectQuery(`FROM survey_runs\s+WHERE id`).WithArgs("run-1").WillReturnRows(rows)

		got, err := store.GetRun(context.Background(), "run-1")
		require.NoError(t, err)
		assert.Equal(t, run.StatusActive, got.Status)
		assert.Equal(t, "q5", got.Cursor)
		require.Len(t, got.History, 1)
		assert.Equal(t, "a", got.AnswersByID["abdominal/q1"].Key)
		assert.Nil(t, got.Summary)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery(`FROM survey_runs\s+WHERE id`).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows(runColumns))

		_, err := store.GetRun(context.Background(), "ghost")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRunMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE survey_runs").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.ReplaceRun(context.Background(), run.Run{ID: "ghost"})
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListIdleRuns(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(runColumns).AddRow(
		"stale", "0.1.0", "active", "min_criteria", "q1",
		[]byte(`[]`), []byte(`{}`), nil, now.Add(-3*time.Hour), now.Add(-3*time.Hour),
	)
	mock.ExpectQuery(`FROM survey_runs\s+WHERE status`).
		WithArgs(run.StatusActive, sqlmock.AnyArg()).
		WillReturnRows(rows)

	idle, err := store.ListIdleRuns(context.Background(), run.StatusActive, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, idle, 1)
	assert.Equal(t, "stale", idle[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseRoundTrip(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	id := uuid.New()

	mock.ExpectExec("INSERT INTO cases").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), nil, caserecord.StatusOpen).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := store.CreateCase(context.Background(), caserecord.Case{Status: caserecord.StatusOpen})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	mock.ExpectQuery(`FROM cases\s+ORDER BY received_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "received_at", "initial_awareness_at", "status"}).
			AddRow(id, now, nil, "open"))

	latest, err := store.LatestCase(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, latest.ID)

	mock.ExpectQuery(`FROM cases\s+ORDER BY received_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "received_at", "initial_awareness_at", "status"}))

	_, err = store.LatestCase(context.Background())
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendAndListEvents(t *testing.T) {
	store, mock := newMockStore(t)
	caseID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO case_event_log").
		WithArgs(sqlmock.AnyArg(), caseID, caserecord.EventCaseCreated, sqlmock.AnyArg(),
			caserecord.ActorAPI, "ref-1", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	appended, err := store.AppendEvent(context.Background(), caserecord.Event{
		CaseID:    caseID,
		Type:      caserecord.EventCaseCreated,
		ActorType: caserecord.ActorAPI,
		ActorID:   "ref-1",
		Payload:   map[string]any{"schema_version": caserecord.SchemaCaseCreated},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, appended.ID)

	// Events written in the same instant must come back in insertion order,
	// so the query has to break occurred_at ties on seq.
	eventColumns := []string{"id", "case_id", "event_type", "occurred_at", "actor_type", "actor_id", "reason", "payload"}
	mock.ExpectQuery(`FROM case_event_log\s+WHERE case_id = \$1\s+ORDER BY occurred_at, seq`).
		WithArgs(caseID).
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow(uuid.New(), caseID, "case.created", now, "api", "ref-1", "", []byte(`{"schema_version":"case.created.v1"}`)).
			AddRow(uuid.New(), caseID, "intake.received", now, "api", "ref-1", "", []byte(`{"schema_version":"intake.received.v1"}`)))

	events, err := store.ListEvents(context.Background(), caseID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, caserecord.EventCaseCreated, events[0].Type)
	assert.Equal(t, "case.created.v1", events[0].Payload["schema_version"])
	assert.Equal(t, caserecord.EventIntakeReceived, events[1].Type)

	require.NoError(t, mock.ExpectationsWereMet())
}
