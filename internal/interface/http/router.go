package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/twilight-hud/internal/domain/auth"
	"github.com/yanqian/twilight-hud/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, authSvc auth.Service, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	logger = logger.With("component", "http")

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
	)

	router.GET("/healthz", handler.Health)

	api := router.Group("/api/v1", authMiddleware(authSvc), rateLimitMiddleware(cfg.HTTP.RateLimit, logger))
	{
		api.GET("/hud", handler.HUD)
		api.POST("/twilight/refresh", handler.RefreshTwilight)

		api.POST("/media/search", handler.SearchMedia)
		api.POST("/media/play", handler.PlayMedia)
		api.POST("/media/pause", handler.PauseMedia)
		api.POST("/media/resume", handler.ResumeMedia)
		api.POST("/media/stop", handler.StopMedia)

		api.GET("/messages", handler.ListMessages)
		api.POST("/messages", handler.ScheduleMessage)
		api.POST("/messages/send", handler.SendMessage)

		api.POST("/stories", handler.TellStory)
		api.POST("/prompt", handler.Acknowledge)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
