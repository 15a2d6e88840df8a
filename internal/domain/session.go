package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionFinished  SessionStatus = "finished"
	SessionCancelled SessionStatus = "cancelled"
)

type SessionMode string

const (
	ModeText  SessionMode = "text"
	ModeVoice SessionMode = "voice"
)

// Session is the interview aggregate root. The plan is embedded as a JSON
// document written once at creation; answers reference the session and can
// not outlive it.
type Session struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	DisplayName string      `gorm:"column:display_name;not null;default:''" json:"display_name"`
	JobRole     string      `gorm:"column:job_role;not null" json:"job_role"`
	Mode        SessionMode `gorm:"column:mode;not null;default:'text'" json:"mode"`

	// ProfileSnapshot is the opaque extractor output; consumed only as text.
	ProfileSnapshot datatypes.JSON `gorm:"type:jsonb;column:profile_snapshot;not null;default:'{}'" json:"profile_snapshot,omitempty"`

	Plan datatypes.JSON `gorm:"type:jsonb;column:plan;not null" json:"plan"`

	Status       SessionStatus `gorm:"column:status;not null;default:'active';index" json:"status"`
	CurrentIndex int           `gorm:"column:current_index;not null;default:0" json:"current_index"`
	LastAnchorID *string       `gorm:"column:last_anchor_id" json:"last_anchor_id,omitempty"`

	Version int64 `gorm:"column:version;not null;default:0" json:"version"`

	CreatedAt time.Time  `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:now()" json:"updated_at"`
	EndedAt   *time.Time `gorm:"column:ended_at" json:"ended_at,omitempty"`
}

func (Session) TableName() string { return "interview_session" }

func (s *Session) IsTerminal() bool {
	return s.Status == SessionFinished || s.Status == SessionCancelled
}

// AdvancePointer moves the pointer to next or, when the plan is exhausted,
// finishes the session. The pointer never moves backwards.
func (s *Session) AdvancePointer(next, planLen int, now time.Time) error {
	if s.IsTerminal() {
		return fmt.Errorf("session %s is %s", s.ID, s.Status)
	}
	if next < s.CurrentIndex {
		return fmt.Errorf("pointer may not decrease: %d -> %d", s.CurrentIndex, next)
	}
	if next >= planLen {
		return s.Finish(now)
	}
	s.CurrentIndex = next
	return nil
}

// Finish transitions active -> finished.
func (s *Session) Finish(now time.Time) error {
	if s.Status != SessionActive {
		return fmt.Errorf("cannot finish session in status %s", s.Status)
	}
	s.Status = SessionFinished
	s.EndedAt = &now
	return nil
}

// Cancel transitions active -> cancelled.
func (s *Session) Cancel(now time.Time) error {
	if s.Status != SessionActive {
		return fmt.Errorf("cannot cancel session in status %s", s.Status)
	}
	s.Status = SessionCancelled
	s.EndedAt = &now
	return nil
}

// DecodePlan parses the embedded plan document. Callers parse once per
// request and keep the typed plan for the rest of the request.
func (s *Session) DecodePlan() (Plan, error) {
	var p Plan
	if len(s.Plan) == 0 {
		return p, fmt.Errorf("session %s has no plan", s.ID)
	}
	if err := json.Unmarshal(s.Plan, &p); err != nil {
		return p, fmt.Errorf("decode plan: %w", err)
	}
	return p, nil
}

func (s *Session) SetAnchor(anchor string) {
	if anchor == "" {
		return
	}
	s.LastAnchorID = &anchor
}

func (s *Session) Anchor() string {
	if s.LastAnchorID == nil {
		return ""
	}
	return *s.LastAnchorID
}
