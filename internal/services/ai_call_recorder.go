package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/data/repos/interview"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/dbctx"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/requestdata"
)

type sessionIDKey struct{}

// WithSessionID tags ctx so provider call audit rows can be attributed to
// the session being served.
func WithSessionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

func sessionIDFrom(ctx context.Context) *uuid.UUID {
	if id, ok := ctx.Value(sessionIDKey{}).(uuid.UUID); ok && id != uuid.Nil {
		return &id
	}
	return nil
}

// AICallRecorder persists one audit row per provider call. Failures are
// logged and swallowed; auditing never affects the serving path.
type AICallRecorder struct {
	repo interview.AICallLogRepo
	log  *logger.Logger
}

func NewAICallRecorder(repo interview.AICallLogRepo, log *logger.Logger) *AICallRecorder {
	return &AICallRecorder{repo: repo, log: log.With("service", "ai_call_recorder")}
}

func (r *AICallRecorder) RecordAICall(ctx context.Context, provider, operation string, duration time.Duration, callErr error) {
	row := &domain.AICallLog{
		ID:         uuid.New(),
		SessionID:  sessionIDFrom(ctx),
		Provider:   provider,
		Operation:  operation,
		DurationMS: duration.Milliseconds(),
		Status:     "ok",
	}
	if callErr != nil {
		row.Status = "error"
		row.Error = callErr.Error()
	}
	if err := r.repo.Create(dbctx.Context{Ctx: ctx}, []*domain.AICallLog{row}); err != nil {
		r.log.Warn("ai call audit write failed", "operation", operation, "error", err)
	}
}

// ownerID is a shared helper for the service layer: the authenticated user
// from request context.
func ownerID(ctx context.Context) uuid.UUID {
	return requestdata.UserID(ctx)
}
