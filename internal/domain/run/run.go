// Package run defines the survey run record: one reporter's session through
// the questionnaire.
package run

import (
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	"github.com/caseflow/intake/internal/survey"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Run is a stored survey session. Cursor points at the next question to
// answer while the run is active; AnswersByID is keyed by
// survey.QualifiedID so repeated question ids across sections never collide.
type Run struct {
	ID          string                   `json:"run_id"`
	Version     string                   `json:"version"`
	Status      Status                   `json:"status"`
	Section     string                   `json:"section"`
	Cursor      string                   `json:"cursor,omitempty"`
	History     []survey.Step            `json:"history"`
	AnswersByID map[string]survey.Answer `json:"answers_by_id"`
	Summary     *survey.Summary          `json:"summary,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// Active reports whether the run still accepts answers.
func (r Run) Active() bool {
	return r.Status == StatusActive
}

// NewID generates a URL-safe short run id from 16 random bytes (~22 chars).
func NewID() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])
}
