package app

import (
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/http/middleware"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}
