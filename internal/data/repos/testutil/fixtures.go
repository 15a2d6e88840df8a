package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
)

// TestPlan builds a normalized plan of n questions for seeding sessions.
func TestPlan(tb testing.TB, role string, n int) domain.Plan {
	tb.Helper()
	p := domain.Plan{JobRole: role, Seed: 1}
	for i := 0; i < n; i++ {
		p.Questions = append(p.Questions, domain.Question{
			Index:  i,
			Type:   domain.TypeForSlot(i, n),
			Text:   "question",
			Intent: "intent",
			Guides: []string{"g1", "g2", "g3"},
		})
	}
	return p
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, planLen int) *domain.Session {
	tb.Helper()
	plan := TestPlan(tb, "backend", planLen)
	raw, err := plan.Encode()
	if err != nil {
		tb.Fatalf("encode plan: %v", err)
	}
	s := &domain.Session{
		ID:              uuid.New(),
		UserID:          userID,
		DisplayName:     "candidate",
		JobRole:         "backend",
		Mode:            domain.ModeText,
		ProfileSnapshot: datatypes.JSON([]byte(`{}`)),
		Plan:            datatypes.JSON(raw),
		Status:          domain.SessionActive,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func SeedAnswer(tb testing.TB, ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, index int) *domain.Answer {
	tb.Helper()
	a := &domain.Answer{
		ID:            uuid.New(),
		SessionID:     sessionID,
		QuestionIndex: index,
		QuestionType:  domain.QuestionTechnical,
		QuestionText:  "question",
		Transcript:    "transcript",
		Metrics:       domain.EncodeMetrics(domain.AnswerMetrics{CoachingTip: "tip"}),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed answer: %v", err)
	}
	return a
}
