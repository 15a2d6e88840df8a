package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Answer is one recorded turn. The composite unique index on
// (session_id, question_index) is the race guard for duplicate submissions;
// rows are created exactly once and never updated.
type Answer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_answer_session_question,priority:1" json:"session_id"`

	QuestionIndex int          `gorm:"column:question_index;not null;uniqueIndex:ux_answer_session_question,priority:2" json:"question_index"`
	QuestionType  QuestionType `gorm:"column:question_type;not null" json:"question_type"`
	QuestionText  string       `gorm:"column:question_text;not null" json:"question_text"`

	Transcript string         `gorm:"type:text;column:transcript;not null" json:"transcript"`
	Metrics    datatypes.JSON `gorm:"type:jsonb;column:metrics;not null;default:'{}'" json:"metrics"`

	AnchorID     string `gorm:"column:anchor_id;not null;default:''" json:"anchor_id"`
	PrevAnchorID string `gorm:"column:prev_anchor_id;not null;default:''" json:"prev_anchor_id"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (Answer) TableName() string { return "interview_answer" }

// AnswerMetrics is the typed view of the metrics document.
type AnswerMetrics struct {
	CoachingTip string  `json:"coaching_tip"`
	RawRating   float64 `json:"raw_rating,omitempty"`
	Fallback    bool    `json:"fallback,omitempty"`
}

func (a *Answer) DecodeMetrics() AnswerMetrics {
	var m AnswerMetrics
	if len(a.Metrics) > 0 {
		_ = json.Unmarshal(a.Metrics, &m)
	}
	return m
}

func EncodeMetrics(m AnswerMetrics) datatypes.JSON {
	raw, err := json.Marshal(m)
	if err != nil {
		return datatypes.JSON([]byte(`{}`))
	}
	return datatypes.JSON(raw)
}
