package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/team-kosa-skynet/Morningstar-back-sub000/internal/http/handlers"
	httpMW "github.com/team-kosa-skynet/Morningstar-back-sub000/internal/http/middleware"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware   *httpMW.AuthMiddleware
	InterviewHandler *httpH.InterviewHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("interview-backend"))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	if cfg.InterviewHandler != nil {
		api.POST("/interviews", cfg.InterviewHandler.Start)
		api.GET("/interviews", cfg.InterviewHandler.List)
		api.GET("/interviews/:id", cfg.InterviewHandler.Get)
		api.POST("/interviews/:id/turns", cfg.InterviewHandler.SubmitTurn)
		api.POST("/interviews/:id/report", cfg.InterviewHandler.Report)
		api.POST("/interviews/:id/cancel", cfg.InterviewHandler.Cancel)
	}

	return r
}
