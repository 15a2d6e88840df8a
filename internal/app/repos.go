package app

import (
	"gorm.io/gorm"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/data/repos/interview"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

type Repos struct {
	Session   interview.SessionRepo
	Answer    interview.AnswerRepo
	AICallLog interview.AICallLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Session:   interview.NewSessionRepo(db, log),
		Answer:    interview.NewAnswerRepo(db, log),
		AICallLog: interview.NewAICallLogRepo(db, log),
	}
}
