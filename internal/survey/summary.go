package survey

import (
	"regexp"
	"strconv"
)

var scaleScorePattern = regexp.MustCompile(`^\s*(\d+)\b`)

// ParseScaleScore extracts the numeric score from a scale option label, e.g.
// "8 - Hurts Whole Lot" yields 8. Returns nil when the label has no leading
// number.
func ParseScaleScore(label string) *int {
	m := scaleScorePattern.FindStringSubmatch(label)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// Attention threshold: pain at or above this scale score flags the report.
const attentionScale = 8

// Summary condenses a completed survey into the fields the case workflow
// cares about.
type Summary struct {
	StartedAtPrecision string `json:"started_at_precision,omitempty"` // "exact" or "approx"
	StartedAtValue     string `json:"started_at_value,omitempty"`
	StillPain          *bool  `json:"still_pain"`
	PainQuality        string `json:"pain_quality,omitempty"`
	PainScale          *int   `json:"pain_scale,omitempty"`
	RequiresAttention  bool   `json:"requires_attention"`
}

// BuildSummary derives the completion summary from recorded answers. Answers
// are keyed by QualifiedID; the symptom detail fields come from the abdominal
// section, which carries them for the built-in questionnaire.
func BuildSummary(answers map[string]Answer) *Summary {
	s := &Summary{}

	if a, ok := answers[QualifiedID("abdominal", "q1a")]; ok {
		s.StartedAtPrecision = "exact"
		s.StartedAtValue = a.Value
	} else if a, ok := answers[QualifiedID("abdominal", "q1b")]; ok {
		s.StartedAtPrecision = "approx"
		s.StartedAtValue = a.Value
	}

	if a, ok := answers[QualifiedID("abdominal", "q2")]; ok {
		still := a.Key == "a"
		s.StillPain = &still
	}

	if a, ok := answers[QualifiedID("abdominal", "q4")]; ok {
		s.PainQuality = a.Label
	}
	if a, ok := answers[QualifiedID("abdominal", "q5")]; ok {
		s.PainScale = a.Score
	}

	s.RequiresAttention = s.PainScale != nil && *s.PainScale >= attentionScale

	return s
}
