package domain

import "encoding/json"

type QuestionType string

const (
	QuestionWarmUp       QuestionType = "warm_up"
	QuestionTechnical    QuestionType = "technical"
	QuestionDesign       QuestionType = "design"
	QuestionTroubleshoot QuestionType = "troubleshoot"
	QuestionWrapUp       QuestionType = "wrap_up"
)

// Question is one planned interview question. Guides always holds exactly
// three answer guides once a plan is normalized.
type Question struct {
	Index  int          `json:"index"`
	Type   QuestionType `json:"type"`
	Text   string       `json:"text"`
	Intent string       `json:"intent"`
	Guides []string     `json:"guides"`
}

// Plan is the fixed ordered question list generated once at session start.
type Plan struct {
	JobRole   string     `json:"job_role"`
	Seed      int64      `json:"seed"`
	Questions []Question `json:"questions"`
}

func (p Plan) Len() int { return len(p.Questions) }

// QuestionAt returns the question at index, or false when out of range.
func (p Plan) QuestionAt(index int) (Question, bool) {
	if index < 0 || index >= len(p.Questions) {
		return Question{}, false
	}
	return p.Questions[index], true
}

func (p Plan) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// TypeForSlot returns the mandated question type for an ordinal slot in a
// plan of length total: warm-up opening, technical and design middle,
// troubleshoot late, wrap-up close.
func TypeForSlot(index, total int) QuestionType {
	if total <= 0 {
		return QuestionTechnical
	}
	switch {
	case index < warmUpCount(total):
		return QuestionWarmUp
	case index >= total-1:
		return QuestionWrapUp
	case index >= total-2:
		return QuestionTroubleshoot
	case float64(index) >= float64(total)*0.6:
		return QuestionDesign
	default:
		return QuestionTechnical
	}
}

func warmUpCount(total int) int {
	if total >= 8 {
		return 2
	}
	return 1
}
