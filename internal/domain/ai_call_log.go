package domain

import (
	"time"

	"github.com/google/uuid"
)

// AICallLog is an audit row per feedback-provider call. Written best
// effort; the calling path never depends on it.
type AICallLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID  *uuid.UUID `gorm:"type:uuid;index" json:"session_id,omitempty"`
	Provider   string     `gorm:"column:provider;not null" json:"provider"`
	Operation  string     `gorm:"column:operation;not null;index" json:"operation"`
	DurationMS int64      `gorm:"column:duration_ms;not null;default:0" json:"duration_ms"`
	Status     string     `gorm:"column:status;not null" json:"status"`
	Error      string     `gorm:"type:text;column:error;not null;default:''" json:"error,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:now();index" json:"created_at"`
}

func (AICallLog) TableName() string { return "ai_call_log" }
