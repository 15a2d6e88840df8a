package interview

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/dbctx"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// ErrDuplicateAnswer is returned when a second answer row for the same
// (session, question_index) hits the unique index. This is the race guard
// for concurrent duplicate submissions.
var ErrDuplicateAnswer = errors.New("answer already recorded for question index")

const pgUniqueViolation = "23505"

type AnswerRepo interface {
	Create(dbc dbctx.Context, a *domain.Answer) error
	ExistsByIndex(dbc dbctx.Context, sessionID uuid.UUID, questionIndex int) (bool, error)
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*domain.Answer, error)
}

type answerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRepo(db *gorm.DB, log *logger.Logger) AnswerRepo {
	return &answerRepo{db: db, log: log.With("repo", "AnswerRepo")}
}

func (r *answerRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *answerRepo) Create(dbc dbctx.Context, a *domain.Answer) error {
	if a == nil {
		return fmt.Errorf("missing answer")
	}
	if a.SessionID == uuid.Nil {
		return fmt.Errorf("missing session_id")
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	err := r.tx(dbc).WithContext(dbc.Ctx).Create(a).Error
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return ErrDuplicateAnswer
	}
	return err
}

func (r *answerRepo) ExistsByIndex(dbc dbctx.Context, sessionID uuid.UUID, questionIndex int) (bool, error) {
	if sessionID == uuid.Nil {
		return false, fmt.Errorf("missing session_id")
	}
	var count int64
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Answer{}).
		Where("session_id = ? AND question_index = ?", sessionID, questionIndex).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *answerRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*domain.Answer, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("missing session_id")
	}
	var out []*domain.Answer
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Answer{}).
		Where("session_id = ?", sessionID).
		Order("question_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
