// Package httpapi exposes the survey and intake service over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/caseflow/intake/internal/domain/run"
	svcerr "github.com/caseflow/intake/internal/errors"
	"github.com/caseflow/intake/internal/services/cases"
	"github.com/caseflow/intake/internal/services/intake"
	"github.com/caseflow/intake/internal/services/runs"
	"github.com/caseflow/intake/internal/storage"
	"github.com/caseflow/intake/internal/survey"
	"github.com/caseflow/intake/pkg/logger"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Handler serves the public API.
type Handler struct {
	runs    *runs.Service
	cases   *cases.Service
	intake  *intake.Service
	version string
	logger  *logger.Logger
}

// NewHandler creates the API handler.
func NewHandler(runSvc *runs.Service, caseSvc *cases.Service, intakeSvc *intake.Service, version string, log *logger.Logger) *Handler {
	return &Handler{
		runs:    runSvc,
		cases:   caseSvc,
		intake:  intakeSvc,
		version: version,
		logger:  log,
	}
}

// Register mounts all routes on the router. debugAuth guards the debug
// surface.
func (h *Handler) Register(r *mux.Router, debugAuth mux.MiddlewareFunc) {
	r.HandleFunc("/", h.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/docs", h.handleDocs).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/survey/test", h.handleSurveyTest).Methods(http.MethodGet)
	api.HandleFunc("/survey/next", h.handleNext).Methods(http.MethodPost)
	api.HandleFunc("/survey/evaluate", h.handleEvaluate).Methods(http.MethodPost)
	api.HandleFunc("/survey/begin", h.handleBegin).Methods(http.MethodPost)
	api.HandleFunc("/survey/resume", h.handleResume).Methods(http.MethodPost)
	api.HandleFunc("/survey/answer", h.handleAnswer).Methods(http.MethodPost)
	api.HandleFunc("/survey/cancel", h.handleCancel).Methods(http.MethodPost)
	api.HandleFunc("/survey/runs/{run_id}/answers", h.handleAnswerLog).Methods(http.MethodGet)
	api.HandleFunc("/intake/webhook", h.handleWebhook).Methods(http.MethodPost)

	debug := r.PathPrefix("/debug").Subrouter()
	debug.Use(debugAuth)
	debug.HandleFunc("/latest", h.handleLatestCase).Methods(http.MethodGet)
}

// --- payloads ---------------------------------------------------------------

type meta struct {
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

type optionPayload struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type questionPayload struct {
	Section     string              `json:"section"`
	ID          string              `json:"id"`
	Text        string              `json:"text"`
	Type        survey.QuestionType `json:"type"`
	Options     []optionPayload     `json:"options,omitempty"`
	Hints       map[string]string   `json:"hints,omitempty"`
	Constraints *survey.Constraints `json:"constraints,omitempty"`
}

type stepResponse struct {
	RunID    string           `json:"run_id,omitempty"`
	Status   run.Status       `json:"status,omitempty"`
	Done     bool             `json:"done"`
	Question *questionPayload `json:"question,omitempty"`
	Summary  *survey.Summary  `json:"summary,omitempty"`
	Meta     meta             `json:"meta"`
}

func (h *Handler) meta() meta {
	return meta{Version: h.version, Timestamp: time.Now().UTC().Format(timestampLayout)}
}

func renderQuestion(section string, q *survey.Question) *questionPayload {
	if q == nil {
		return nil
	}
	p := &questionPayload{
		Section:     section,
		ID:          q.ID,
		Text:        q.Text,
		Type:        q.Type,
		Hints:       q.Hints,
		Constraints: q.Constraints,
	}
	for _, key := range q.OptionKeys() {
		p.Options = append(p.Options, optionPayload{Key: key, Label: q.Options[key].Label})
	}
	return p
}

func (h *Handler) renderStep(res runs.StepResult) stepResponse {
	return stepResponse{
		RunID:    res.RunID,
		Status:   res.Status,
		Done:     res.Done,
		Question: renderQuestion(res.Section, res.Question),
		Summary:  res.Summary,
		Meta:     h.meta(),
	}
}

// --- handlers ---------------------------------------------------------------

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"service": "caseflow-intake",
		"version": h.version,
		"meta":    h.meta(),
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": h.version})
}

func (h *Handler) handleDocs(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"endpoints": []string{
			"GET /health",
			"GET /api/survey/test",
			"POST /api/survey/next",
			"POST /api/survey/evaluate",
			"POST /api/survey/begin",
			"POST /api/survey/resume",
			"POST /api/survey/answer",
			"POST /api/survey/cancel",
			"GET /api/survey/runs/{run_id}/answers",
			"POST /api/intake/webhook",
		},
		"meta": h.meta(),
	})
}

// handleSurveyTest is a liveness ping for the survey surface.
func (h *Handler) handleSurveyTest(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": "survey alive",
		"meta":   h.meta(),
	})
}

type nextRequest struct {
	Section    string `json:"section"`
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// handleNext resolves one transition statelessly: validate the answer for the
// named question and return the question that follows. With no question id
// the walk starts at the entry question.
func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	var req nextRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	engine := h.runs.Engine()
	if req.QuestionID == "" {
		section, entry := engine.Entry()
		h.writeJSON(w, http.StatusOK, stepResponse{
			Question: renderQuestion(section, &entry),
			Meta:     h.meta(),
		})
		return
	}
	if req.Section == "" {
		req.Section = engine.Definition().EntrySection
	}

	tr, err := engine.Advance(req.Section, req.QuestionID, req.Answer)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stepResponse{
		Done:     tr.Done,
		Question: renderQuestion(tr.Section, tr.Next),
		Meta:     h.meta(),
	})
}

type evaluateRequest struct {
	Steps []survey.Step `json:"steps"`
}

type evaluateResponse struct {
	Done     bool                     `json:"done"`
	Question *questionPayload         `json:"question,omitempty"`
	Answers  map[string]survey.Answer `json:"answers"`
	Summary  *survey.Summary          `json:"summary,omitempty"`
	Meta     meta                     `json:"meta"`
}

// handleEvaluate replays a full history from the entry question and returns
// either the next question to ask or the completion summary.
func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.runs.Engine().Replay(req.Steps)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, evaluateResponse{
		Done:     res.Done,
		Question: renderQuestion(res.Section, res.Next),
		Answers:  res.Answers,
		Summary:  res.Summary,
		Meta:     h.meta(),
	})
}

func (h *Handler) handleBegin(w http.ResponseWriter, r *http.Request) {
	res, err := h.runs.Begin(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, h.renderStep(res))
}

type resumeRequest struct {
	RunID string `json:"run_id"`
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	var req resumeRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	res, err := h.runs.Resume(r.Context(), req.RunID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.renderStep(res))
}

type answerRequest struct {
	RunID      string `json:"run_id"`
	Section    string `json:"section"`
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	res, err := h.runs.Answer(r.Context(), req.RunID, req.Section, req.QuestionID, req.Answer)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.renderStep(res))
}

type cancelRequest struct {
	RunID  string `json:"run_id"`
	Reason string `json:"reason"`
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	cancelled, err := h.runs.Cancel(r.Context(), req.RunID, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"run_id": cancelled.ID,
		"status": cancelled.Status,
		"meta":   h.meta(),
	})
}

func (h *Handler) handleAnswerLog(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["run_id"]
	rn, entries, err := h.runs.AnswerLog(r.Context(), runID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"run_id":  rn.ID,
		"status":  rn.Status,
		"entries": entries,
		"meta":    h.meta(),
	})
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.writeError(w, svcerr.InvalidPayload("could not read body"))
		return
	}
	receipt, err := h.intake.HandleWebhook(r.Context(), body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, map[string]any{
		"case_id":     receipt.CaseID,
		"status":      receipt.Status,
		"received_at": receipt.ReceivedAt,
		"meta":        h.meta(),
	})
}

func (h *Handler) handleLatestCase(w http.ResponseWriter, r *http.Request) {
	timeline, err := h.cases.Latest(r.Context())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = svcerr.NotFound("no cases recorded yet")
		}
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"case":   timeline.Case,
		"events": timeline.Events,
		"meta":   h.meta(),
	})
}

// --- plumbing ---------------------------------------------------------------

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.writeError(w, svcerr.InvalidPayload("invalid request body: "+err.Error()))
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("encode response")
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var se *svcerr.ServiceError
	if !errors.As(err, &se) {
		h.logger.WithError(err).Error("unhandled error")
		se = svcerr.Internal()
	}
	h.writeJSON(w, se.HTTPStatus, map[string]any{
		"error": errorBody{Code: se.Code, Message: se.Message},
		"meta":  h.meta(),
	})
}
