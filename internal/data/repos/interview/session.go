package interview

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/dbctx"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// ErrVersionConflict is returned when a compare-and-swap update loses the
// race on the session version counter. Retryable by the caller layer.
var ErrVersionConflict = errors.New("session version conflict")

type SessionRepo interface {
	Create(dbc dbctx.Context, s *domain.Session) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Session, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*domain.Session, error)
	// UpdateCAS persists pointer/status/anchor changes guarded by the
	// version the session was read at. Increments version on success.
	UpdateCAS(dbc dbctx.Context, s *domain.Session, readVersion int64) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, log *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: log.With("repo", "SessionRepo")}
}

func (r *sessionRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *sessionRepo) Create(dbc dbctx.Context, s *domain.Session) error {
	if s == nil {
		return fmt.Errorf("missing session")
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return r.tx(dbc).WithContext(dbc.Ctx).Create(s).Error
}

func (r *sessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Session, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	var s domain.Session
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*domain.Session, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*domain.Session
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Session{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionRepo) UpdateCAS(dbc dbctx.Context, s *domain.Session, readVersion int64) error {
	if s == nil || s.ID == uuid.Nil {
		return fmt.Errorf("missing session")
	}
	updates := map[string]interface{}{
		"current_index":  s.CurrentIndex,
		"status":         s.Status,
		"last_anchor_id": s.LastAnchorID,
		"ended_at":       s.EndedAt,
		"version":        readVersion + 1,
		"updated_at":     time.Now().UTC(),
	}
	res := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Session{}).
		Where("id = ? AND version = ?", s.ID, readVersion).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	s.Version = readVersion + 1
	return nil
}
