package app

import (
	httpserver "github.com/team-kosa-skynet/Morningstar-back-sub000/internal/http"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *httpserver.Server {
	return httpserver.NewServer(httpserver.RouterConfig{
		Log:              log,
		AuthMiddleware:   middleware.Auth,
		InterviewHandler: handlers.Interview,
		HealthHandler:    handlers.Health,
	})
}
