package server

import (
	"context"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pagewatch/internal/handlers"
	"pagewatch/internal/handlers/api"
	"pagewatch/internal/middleware"
)

// Store is everything the HTTP layer reads and writes.
type Store interface {
	api.TargetStore
	handlers.Pinger
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, store Store, runner api.TargetRunner) error {
	// Initialize middleware
	authMiddleware, err := middleware.NewAuthMiddleware(ctx, s.Cfg.OIDCIssuer, s.Cfg.OIDCClientID)
	if err != nil {
		return err
	}
	if !authMiddleware.Enabled() {
		s.log.Warn("API authentication disabled, OIDC_ISSUER is not set")
	}

	s.registerRoutes(store, runner, authMiddleware)
	return nil
}

func (s *Server) registerRoutes(store Store, runner api.TargetRunner, auth *middleware.AuthMiddleware) {
	probeHandler := handlers.NewProbeHandler(store)
	targetHandler := api.NewTargetHandler(store, runner)
	analyzeHandler := api.NewAnalyzeHandler()

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// JSON API
	v1 := s.App.Group("/api/v1", auth.RequireToken)

	v1.Get("/targets", targetHandler.List)
	v1.Post("/targets", targetHandler.Create)
	v1.Get("/targets/:id", targetHandler.Get)
	v1.Put("/targets/:id", targetHandler.Update)
	v1.Delete("/targets/:id", targetHandler.Delete)
	v1.Post("/targets/:id/run", targetHandler.Run)
	v1.Get("/targets/:id/pages", targetHandler.Pages)
	v1.Get("/targets/:id/alerts", targetHandler.Alerts)
	v1.Get("/targets/:id/alerts/:alertID", targetHandler.Alert)

	v1.Post("/analyze", analyzeHandler.Analyze)
}
