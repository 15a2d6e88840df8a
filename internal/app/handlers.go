package app

import (
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/http/handlers"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

type Handlers struct {
	Interview *handlers.InterviewHandler
	Health    *handlers.HealthHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Interview: handlers.NewInterviewHandler(services.Interview),
		Health:    handlers.NewHealthHandler(),
	}
}
