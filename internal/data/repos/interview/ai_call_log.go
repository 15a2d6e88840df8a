package interview

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/dbctx"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

type AICallLogRepo interface {
	Create(dbc dbctx.Context, rows []*domain.AICallLog) error
}

type aiCallLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAICallLogRepo(db *gorm.DB, log *logger.Logger) AICallLogRepo {
	return &aiCallLogRepo{db: db, log: log.With("repo", "AICallLogRepo")}
}

func (r *aiCallLogRepo) Create(dbc dbctx.Context, rows []*domain.AICallLog) error {
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).Create(&rows).Error
}
