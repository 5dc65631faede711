package survey

import (
	"regexp"
	"strings"

	svcerr "github.com/caseflow/intake/internal/errors"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Engine validates answers against a questionnaire and resolves transitions.
type Engine struct {
	def *Definition
}

// NewEngine wraps a validated questionnaire definition.
func NewEngine(def *Definition) *Engine {
	return &Engine{def: def}
}

// Definition returns the questionnaire this engine runs.
func (e *Engine) Definition() *Definition {
	return e.def
}

// Entry returns the first question of the questionnaire.
func (e *Engine) Entry() (section string, q Question) {
	q, _ = e.def.Question(e.def.EntrySection, e.def.EntryQuestion)
	return e.def.EntrySection, q
}

// Answer is the recorded outcome of answering one question.
type Answer struct {
	Type  QuestionType `json:"type"`
	Value string       `json:"value,omitempty"` // free-text value
	Key   string       `json:"key,omitempty"`   // chosen option key
	Label string       `json:"label,omitempty"` // chosen option label
	Score *int         `json:"score,omitempty"` // parsed scale score
}

// Transition is the outcome of advancing past one question.
type Transition struct {
	Done    bool
	Section string    // section of the next question
	Next    *Question // nil when done
	Answer  Answer
}

// Advance validates an answer for the question at section/qid and resolves
// where the survey goes next. The answer is the option key for choice and
// scale questions and the raw text for free-text questions. No state is
// touched; rejected answers leave the caller's run unchanged.
func (e *Engine) Advance(section, qid, answer string) (Transition, error) {
	q, ok := e.def.Question(section, qid)
	if !ok {
		return Transition{}, svcerr.UnknownQuestion(qid)
	}

	var (
		record Answer
		next   string
	)

	switch q.Type {
	case TypeFreeText:
		val := strings.TrimSpace(answer)
		if val == "" {
			return Transition{}, svcerr.MissingAnswer(qid, q.Text)
		}
		if q.Constraints != nil && q.Constraints.Pattern == PatternISODate && !isoDatePattern.MatchString(val) {
			return Transition{}, svcerr.DateFormat()
		}
		record = Answer{Type: TypeFreeText, Value: val}
		next = q.Next

	case TypeSingleChoice, TypeScale:
		key := strings.TrimSpace(answer)
		if key == "" {
			return Transition{}, svcerr.MissingAnswer(qid, q.Text)
		}
		opt, ok := q.Options[key]
		if !ok {
			return Transition{}, svcerr.InvalidAnswer(key, qid)
		}
		record = Answer{Type: q.Type, Key: key, Label: opt.Label}
		if q.Type == TypeScale {
			record.Score = ParseScaleScore(opt.Label)
		}
		next = opt.Next

	default:
		return Transition{}, svcerr.UnsupportedType(string(q.Type), qid)
	}

	return e.resolve(section, qid, next, record)
}

func (e *Engine) resolve(section, qid, next string, record Answer) (Transition, error) {
	if IsTerminal(next) {
		return Transition{Done: true, Answer: record}, nil
	}

	if gotoSection, gotoQID, ok := ParseGoto(next); ok {
		target, found := e.def.Question(gotoSection, gotoQID)
		if !found {
			return Transition{}, svcerr.BrokenDefinition("'%s/%s' points to unknown target '%s/%s'", section, qid, gotoSection, gotoQID)
		}
		return Transition{Section: gotoSection, Next: &target, Answer: record}, nil
	}

	target, found := e.def.Question(section, next)
	if !found {
		return Transition{}, svcerr.BrokenDefinition("'%s' points to unknown question '%s'", qid, next)
	}
	return Transition{Section: section, Next: &target, Answer: record}, nil
}

// Step is one answered question in a survey history.
type Step struct {
	Section    string `json:"section,omitempty"` // filled by the engine; clients may omit it
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// ReplayResult is the outcome of replaying a history from the entry question.
type ReplayResult struct {
	Done    bool
	Section string
	Next    *Question
	Answers map[string]Answer // keyed by QualifiedID
	Summary *Summary
}

// Replay walks a history from the entry question, validating each step
// against the expected cursor. The history must answer questions in exactly
// the order the graph presents them; anything else is a flow divergence.
func (e *Engine) Replay(history []Step) (ReplayResult, error) {
	section, cursor := e.def.EntrySection, e.def.EntryQuestion
	answers := make(map[string]Answer, len(history))

	for _, step := range history {
		if step.QuestionID != cursor {
			return ReplayResult{}, svcerr.FlowDivergence(cursor, step.QuestionID)
		}

		tr, err := e.Advance(section, cursor, step.Answer)
		if err != nil {
			return ReplayResult{}, err
		}
		answers[QualifiedID(section, cursor)] = tr.Answer

		if tr.Done {
			return ReplayResult{Done: true, Answers: answers, Summary: BuildSummary(answers)}, nil
		}
		section, cursor = tr.Section, tr.Next.ID
	}

	// History consumed without finishing: report the next question to ask.
	next, ok := e.def.Question(section, cursor)
	if !ok {
		return ReplayResult{}, svcerr.BrokenDefinition("missing node for expected cursor '%s'", cursor)
	}
	return ReplayResult{Section: section, Next: &next, Answers: answers}, nil
}
