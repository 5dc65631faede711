// Package survey implements the branching questionnaire engine: the question
// graph, answer validation, transitions, history replay and the completion
// summary.
package survey

import (
	"fmt"
	"sort"
	"strings"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	TypeSingleChoice QuestionType = "single_choice"
	TypeScale        QuestionType = "scale"
	TypeFreeText     QuestionType = "free_text"
)

// Next pointer sentinels. An empty next or NextEnd terminates the survey;
// a pointer with the GOTO prefix jumps into another section.
const (
	NextEnd    = "END"
	gotoPrefix = "GOTO:"
)

// PatternISODate marks a free-text question whose answer must be YYYY-MM-DD.
const PatternISODate = "ISO_YYYY_MM_DD"

// Option is one selectable answer of a choice or scale question.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Next  string `json:"next,omitempty" yaml:"next,omitempty"`
}

// Constraints carries validation hints for a question.
type Constraints struct {
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Pattern  string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// Question is a node in the questionnaire graph. Choice and scale questions
// route through their options; free-text questions route through Next.
type Question struct {
	ID          string            `json:"id" yaml:"id"`
	Text        string            `json:"text" yaml:"text"`
	Type        QuestionType      `json:"type" yaml:"type"`
	Options     map[string]Option `json:"options,omitempty" yaml:"options,omitempty"`
	Next        string            `json:"next,omitempty" yaml:"next,omitempty"`
	Hints       map[string]string `json:"hints,omitempty" yaml:"hints,omitempty"`
	Constraints *Constraints      `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// OptionKeys returns the option keys in stable order.
func (q Question) OptionKeys() []string {
	keys := make([]string, 0, len(q.Options))
	for k := range q.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Section is a named group of questions keyed by question id.
type Section map[string]Question

// Definition is a complete, versioned questionnaire.
type Definition struct {
	Version       string             `json:"version" yaml:"version"`
	EntrySection  string             `json:"entry_section" yaml:"entry_section"`
	EntryQuestion string             `json:"entry_question" yaml:"entry_question"`
	Sections      map[string]Section `json:"sections" yaml:"sections"`
}

// Question looks up a question by section and id.
func (d *Definition) Question(section, qid string) (Question, bool) {
	sec, ok := d.Sections[section]
	if !ok {
		return Question{}, false
	}
	q, ok := sec[qid]
	return q, ok
}

// IsTerminal reports whether a next pointer ends the survey.
func IsTerminal(next string) bool {
	return next == "" || next == NextEnd
}

// ParseGoto splits a cross-section pointer of the form GOTO:section:qid.
func ParseGoto(next string) (section, qid string, ok bool) {
	if !strings.HasPrefix(next, gotoPrefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(next, gotoPrefix)
	section, qid, ok = strings.Cut(rest, ":")
	if !ok || section == "" || qid == "" {
		return "", "", false
	}
	return section, qid, true
}

// QualifiedID keys an answer by section and question id. Question ids repeat
// across sections, so answers are always stored under the qualified form.
func QualifiedID(section, qid string) string {
	return section + "/" + qid
}

// Validate checks the structural integrity of the questionnaire: the entry
// point exists, every question has a known type, choice questions have
// options, and every next pointer resolves.
func (d *Definition) Validate() error {
	if len(d.Sections) == 0 {
		return fmt.Errorf("definition has no sections")
	}
	if _, ok := d.Question(d.EntrySection, d.EntryQuestion); !ok {
		return fmt.Errorf("entry question %s/%s not found", d.EntrySection, d.EntryQuestion)
	}

	for name, sec := range d.Sections {
		for qid, q := range sec {
			if q.ID != "" && q.ID != qid {
				return fmt.Errorf("question %s/%s declares mismatched id %q", name, qid, q.ID)
			}
			switch q.Type {
			case TypeFreeText:
				if err := d.checkNext(name, qid, q.Next); err != nil {
					return err
				}
			case TypeSingleChoice, TypeScale:
				if len(q.Options) == 0 {
					return fmt.Errorf("question %s/%s has no options", name, qid)
				}
				for key, opt := range q.Options {
					if err := d.checkNext(name, qid+"."+key, opt.Next); err != nil {
						return err
					}
				}
			default:
				return fmt.Errorf("question %s/%s has unknown type %q", name, qid, q.Type)
			}
		}
	}
	return nil
}

func (d *Definition) checkNext(section, ref, next string) error {
	if IsTerminal(next) {
		return nil
	}
	if gotoSection, gotoQID, ok := ParseGoto(next); ok {
		if _, found := d.Question(gotoSection, gotoQID); !found {
			return fmt.Errorf("%s/%s points to unknown target %s/%s", section, ref, gotoSection, gotoQID)
		}
		return nil
	}
	if strings.HasPrefix(next, gotoPrefix) {
		return fmt.Errorf("%s/%s has malformed goto %q", section, ref, next)
	}
	if _, found := d.Question(section, next); !found {
		return fmt.Errorf("%s/%s points to unknown question %q", section, ref, next)
	}
	return nil
}
