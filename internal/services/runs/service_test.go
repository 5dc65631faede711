package runs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflow/intake/internal/domain/run"
	svcerr "github.com/caseflow/intake/internal/errors"
	"github.com/caseflow/intake/internal/storage/memory"
	"github.com/caseflow/intake/internal/survey"
	"github.com/caseflow/intake/pkg/logger"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	def := survey.DefaultDefinition("0.1.0")
	require.NoError(t, def.Validate())
	store := memory.New()
	return NewService(survey.NewEngine(def), store, logger.NewDefault("test")), store
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	se, ok := err.(*svcerr.ServiceError)
	require.True(t, ok, "expected a service error, got %v", err)
	assert.Equal(t, code, se.Code)
}

func TestBeginStartsAtEntry(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Begin(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, run.StatusActive, res.Status)
	assert.Equal(t, "min_criteria", res.Section)
	require.NotNil(t, res.Question)
	assert.Equal(t, "q1", res.Question.ID)
}

func TestAnswerAdvancesCursor(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	begun, err := svc.Begin(ctx)
	require.NoError(t, err)

	res, err := svc.Answer(ctx, begun.RunID, "", "q1", "a")
	require.NoError(t, err)
	require.NotNil(t, res.Question)
	assert.Equal(t, "q2", res.Question.ID)

	t.Run("divergent question rejected", func(t *testing.T) {
		_, err := svc.Answer(ctx, begun.RunID, "", "q5", "x")
		requireCode(t, err, svcerr.CodeFlowDivergence)
	})

	t.Run("invalid answer leaves run untouched", func(t *testing.T) {
		_, err := svc.Answer(ctx, begun.RunID, "", "q2", "zzz")
		requireCode(t, err, svcerr.CodeInvalidAnswer)

		resumed, err := svc.Resume(ctx, begun.RunID)
		require.NoError(t, err)
		require.NotNil(t, resumed.Question)
		assert.Equal(t, "q2", resumed.Question.ID)
	})

	t.Run("unknown run", func(t *testing.T) {
		_, err := svc.Answer(ctx, "ghost", "", "q1", "a")
		requireCode(t, err, svcerr.CodeUnknownRun)
	})
}

// answerAll drives a run through the provided answers, asserting each step is
// accepted.
func answerAll(t *testing.T, svc *Service, runID string, steps [][2]string) StepResult {
	t.Helper()
	ctx := context.Background()
	var res StepResult
	for _, step := range steps {
		var err error
		res, err = svc.Answer(ctx, runID, "", step[0], step[1])
		require.NoError(t, err, "answering %s", step[0])
	}
	return res
}

var headachePath = [][2]string{
	{"q1", "a"}, {"q2", "b"}, {"q3", "a"}, {"q4", "b"}, {"q4b", "a"},
	{"q5", "Ibuprofen"}, {"q6", "severe headache after dose"},
	{"q1", "b"}, // selector -> headache
	{"q1", "a"}, {"q1a", "2025-09-01"}, {"q2", "d"}, {"q3", "b"}, {"q4", "none"},
}

func TestRunCompletion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	begun, err := svc.Begin(ctx)
	require.NoError(t, err)

	final := answerAll(t, svc, begun.RunID, headachePath)
	assert.True(t, final.Done)
	assert.Equal(t, run.StatusCompleted, final.Status)
	require.NotNil(t, final.Summary)

	t.Run("resume returns summary", func(t *testing.T) {
		resumed, err := svc.Resume(ctx, begun.RunID)
		require.NoError(t, err)
		assert.True(t, resumed.Done)
		require.NotNil(t, resumed.Summary)
	})

	t.Run("further answers rejected", func(t *testing.T) {
		_, err := svc.Answer(ctx, begun.RunID, "", "q1", "a")
		requireCode(t, err, svcerr.CodeStatusInactive)
	})

	t.Run("cancel after completion rejected", func(t *testing.T) {
		_, err := svc.Cancel(ctx, begun.RunID, "changed my mind")
		requireCode(t, err, svcerr.CodeStatusInactive)
	})
}

func TestCancel(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	begun, err := svc.Begin(ctx)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, begun.RunID, "abandoned")
	require.NoError(t, err)
	assert.Equal(t, run.StatusCancelled, cancelled.Status)

	t.Run("resume of cancelled run rejected", func(t *testing.T) {
		_, err := svc.Resume(ctx, begun.RunID)
		requireCode(t, err, svcerr.CodeStatusInactive)
	})

	t.Run("double cancel rejected", func(t *testing.T) {
		_, err := svc.Cancel(ctx, begun.RunID, "again")
		requireCode(t, err, svcerr.CodeStatusInactive)
	})
}

func TestResumeUnknownRun(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Resume(context.Background(), "ghost")
	requireCode(t, err, svcerr.CodeUnknownRun)
}

func TestAnswerLog(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	begun, err := svc.Begin(ctx)
	require.NoError(t, err)

	t.Run("active run ends with pending entry", func(t *testing.T) {
		_, err := svc.Answer(ctx, begun.RunID, "", "q1", "a")
		require.NoError(t, err)

		rn, entries, err := svc.AnswerLog(ctx, begun.RunID)
		require.NoError(t, err)
		assert.Equal(t, run.StatusActive, rn.Status)
		require.Len(t, entries, 2)

		assert.Equal(t, "q1", entries[0].QuestionID)
		require.NotNil(t, entries[0].Answer)
		assert.Equal(t, "a", entries[0].Answer.Key)
		assert.False(t, entries[0].Incomplete)

		assert.Equal(t, "q2", entries[1].QuestionID)
		assert.Nil(t, entries[1].Answer)
		assert.True(t, entries[1].Incomplete)
	})

	t.Run("completed run has no pending entry", func(t *testing.T) {
		answerAll(t, svc, begun.RunID, headachePath[1:])

		rn, entries, err := svc.AnswerLog(ctx, begun.RunID)
		require.NoError(t, err)
		assert.Equal(t, run.StatusCompleted, rn.Status)
		require.Len(t, entries, len(headachePath))
		for _, entry := range entries {
			assert.False(t, entry.Incomplete)
			require.NotNil(t, entry.Answer, entry.QuestionID)
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		_, _, err := svc.AnswerLog(ctx, "ghost")
		requireCode(t, err, svcerr.CodeUnknownRun)
	})
}

func TestJanitorSweep(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	begun, err := svc.Begin(ctx)
	require.NoError(t, err)

	// Backdate the run past the idle window.
	stale, err := store.GetRun(ctx, begun.RunID)
	require.NoError(t, err)
	stale.UpdatedAt = time.Now().UTC().Add(-2 * time.Hour)
	// ReplaceRun stamps UpdatedAt, so plant the stale copy directly.
	fresh := memory.New()
	require.NoError(t, fresh.CreateRun(ctx, stale))

	janitor := NewJanitor(fresh, logger.NewDefault("test"), "@every 1h", time.Hour)
	cancelled := janitor.Sweep(ctx)
	assert.Equal(t, 1, cancelled)

	got, err := fresh.GetRun(ctx, begun.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.StatusCancelled, got.Status)
}

func TestJanitorSkipsFreshRuns(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Begin(ctx)
	require.NoError(t, err)

	janitor := NewJanitor(store, logger.NewDefault("test"), "@every 1h", time.Hour)
	assert.Equal(t, 0, janitor.Sweep(ctx))
}
