// Package runs manages stateful survey sessions: begin, answer, resume and
// cancel, plus the answer log and the idle-run janitor.
package runs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caseflow/intake/internal/domain/run"
	svcerr "github.com/caseflow/intake/internal/errors"
	"github.com/caseflow/intake/internal/storage"
	"github.com/caseflow/intake/internal/survey"
	"github.com/caseflow/intake/pkg/logger"
)

// Service drives survey runs against a run store.
type Service struct {
	engine *survey.Engine
	store  storage.RunStore
	logger *logger.Logger
}

// NewService creates a run service.
func NewService(engine *survey.Engine, store storage.RunStore, log *logger.Logger) *Service {
	return &Service{engine: engine, store: store, logger: log}
}

// Engine exposes the questionnaire engine for stateless evaluation.
func (s *Service) Engine() *survey.Engine {
	return s.engine
}

// StepResult is the state of a run after an operation: either the next
// question to ask or, once done, the completion summary.
type StepResult struct {
	RunID    string
	Status   run.Status
	Done     bool
	Section  string
	Question *survey.Question
	Summary  *survey.Summary
}

// Begin opens a new run positioned at the entry question.
func (s *Service) Begin(ctx context.Context) (StepResult, error) {
	section, entry := s.engine.Entry()
	now := time.Now().UTC()

	r := run.Run{
		ID:          run.NewID(),
		Version:     s.engine.Definition().Version,
		Status:      run.StatusActive,
		Section:     section,
		Cursor:      entry.ID,
		History:     []survey.Step{},
		AnswersByID: map[string]survey.Answer{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateRun(ctx, r); err != nil {
		return StepResult{}, fmt.Errorf("create run: %w", err)
	}

	s.logger.WithField("run_id", r.ID).Info("survey run started")
	return StepResult{RunID: r.ID, Status: r.Status, Section: section, Question: &entry}, nil
}

// Resume returns the current state of a run without changing it. Completed
// runs resume to their summary; cancelled runs are rejected.
func (s *Service) Resume(ctx context.Context, runID string) (StepResult, error) {
	r, err := s.load(ctx, runID)
	if err != nil {
		return StepResult{}, err
	}

	switch r.Status {
	case run.StatusCompleted:
		return StepResult{RunID: r.ID, Status: r.Status, Done: true, Summary: r.Summary}, nil
	case run.StatusActive:
		q, ok := s.engine.Definition().Question(r.Section, r.Cursor)
		if !ok {
			return StepResult{}, svcerr.BrokenDefinition("missing node for stored cursor '%s/%s'", r.Section, r.Cursor)
		}
		return StepResult{RunID: r.ID, Status: r.Status, Section: r.Section, Question: &q}, nil
	default:
		return StepResult{}, svcerr.StatusInactive(string(r.Status))
	}
}

// Answer records one answer on an active run. The answered question must be
// the run's cursor; a mismatch is a flow divergence and the run is left
// untouched. When the provided section is empty the cursor's section is
// assumed.
func (s *Service) Answer(ctx context.Context, runID, section, qid, answer string) (StepResult, error) {
	r, err := s.load(ctx, runID)
	if err != nil {
		return StepResult{}, err
	}
	if !r.Active() {
		return StepResult{}, svcerr.StatusInactive(string(r.Status))
	}
	if section == "" {
		section = r.Section
	}
	if section != r.Section || qid != r.Cursor {
		return StepResult{}, svcerr.FlowDivergence(survey.QualifiedID(r.Section, r.Cursor), survey.QualifiedID(section, qid))
	}

	tr, err := s.engine.Advance(r.Section, r.Cursor, answer)
	if err != nil {
		return StepResult{}, err
	}

	r.History = append(r.History, survey.Step{Section: r.Section, QuestionID: r.Cursor, Answer: answer})
	if r.AnswersByID == nil {
		r.AnswersByID = map[string]survey.Answer{}
	}
	r.AnswersByID[survey.QualifiedID(r.Section, r.Cursor)] = tr.Answer

	if tr.Done {
		r.Status = run.StatusCompleted
		r.Cursor = ""
		r.Summary = survey.BuildSummary(r.AnswersByID)
	} else {
		r.Section = tr.Section
		r.Cursor = tr.Next.ID
	}

	r, err = s.store.ReplaceRun(ctx, r)
	if err != nil {
		return StepResult{}, s.translate(runID, err)
	}

	if r.Status == run.StatusCompleted {
		s.logger.WithField("run_id", r.ID).Info("survey run completed")
		return StepResult{RunID: r.ID, Status: r.Status, Done: true, Summary: r.Summary}, nil
	}
	return StepResult{RunID: r.ID, Status: r.Status, Section: r.Section, Question: tr.Next}, nil
}

// Cancel marks an active run cancelled. Cancelling twice is a conflict.
func (s *Service) Cancel(ctx context.Context, runID, reason string) (run.Run, error) {
	r, err := s.load(ctx, runID)
	if err != nil {
		return run.Run{}, err
	}
	if !r.Active() {
		return run.Run{}, svcerr.StatusInactive(string(r.Status))
	}

	r.Status = run.StatusCancelled
	r, err = s.store.ReplaceRun(ctx, r)
	if err != nil {
		return run.Run{}, s.translate(runID, err)
	}

	s.logger.WithField("run_id", r.ID).WithField("reason", reason).Info("survey run cancelled")
	return r, nil
}

// LogEntry is one line of a run's answer log.
type LogEntry struct {
	Section      string              `json:"section"`
	QuestionID   string              `json:"question_id"`
	QuestionText string              `json:"question_text"`
	Type         survey.QuestionType `json:"type"`
	Answer       *survey.Answer      `json:"answer,omitempty"`
	Incomplete   bool                `json:"incomplete,omitempty"`
}

// AnswerLog renders a run's history as question/answer pairs in the order
// they were answered. An active run gets a trailing unanswered entry for its
// cursor.
func (s *Service) AnswerLog(ctx context.Context, runID string) (run.Run, []LogEntry, error) {
	r, err := s.load(ctx, runID)
	if err != nil {
		return run.Run{}, nil, err
	}

	entries := make([]LogEntry, 0, len(r.History)+1)
	for _, step := range r.History {
		q, ok := s.engine.Definition().Question(step.Section, step.QuestionID)
		if !ok {
			return run.Run{}, nil, svcerr.BrokenDefinition("missing node for answered question '%s/%s'", step.Section, step.QuestionID)
		}
		entry := LogEntry{Section: step.Section, QuestionID: q.ID, QuestionText: q.Text, Type: q.Type}
		if a, ok := r.AnswersByID[survey.QualifiedID(step.Section, step.QuestionID)]; ok {
			answer := a
			entry.Answer = &answer
		}
		entries = append(entries, entry)
	}

	if r.Active() && r.Cursor != "" {
		if q, ok := s.engine.Definition().Question(r.Section, r.Cursor); ok {
			entries = append(entries, LogEntry{
				Section:      r.Section,
				QuestionID:   q.ID,
				QuestionText: q.Text,
				Type:         q.Type,
				Incomplete:   true,
			})
		}
	}
	return r, entries, nil
}

func (s *Service) load(ctx context.Context, runID string) (run.Run, error) {
	r, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return run.Run{}, s.translate(runID, err)
	}
	return r, nil
}

func (s *Service) translate(runID string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return svcerr.UnknownRun(runID)
	}
	return err
}
