// Package api serves the Amanah HTTP interface.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/halaleco/amanah/internal/domain"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server with the full route tree.
func NewServer(cfg domain.ServerConfig, handler *Handler) *Server {
	handler.secureCookies = cfg.Production

	router := chi.NewRouter()

	// Global middleware stack
	router.Use(CORSMiddleware)         // CORS for browser clients
	router.Use(RecoverMiddleware)      // Recover from panics
	router.Use(TracingMiddleware)      // OpenTelemetry tracing
	router.Use(LoggingMiddleware)      // Request logging
	router.Use(middleware.RealIP)      // Extract real IP
	router.Use(middleware.Compress(5)) // Gzip compression

	// Health endpoints (no auth)
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)

	// Session endpoints
	router.Post("/auth/register", handler.Register)
	router.Post("/auth/login", handler.Login)

	// Authenticated routes
	router.Route("/", func(r chi.Router) {
		r.Use(handler.AuthMiddleware)

		r.Get("/auth/me", handler.Me)

		// Screening
		r.Post("/validate-halal", handler.ValidateHalal)
		r.Post("/halal-compliance", handler.HalalCompliance)
		r.Get("/halal-compliance", handler.HalalComplianceDoc)
		r.Post("/fraud-detection", handler.FraudDetection)
		r.Get("/fraud-detection", handler.FraudDetectionDoc)

		// Supply chain
		r.Post("/supply-chain/track", handler.SupplyChainTrack)
		r.Get("/supply-chain/track", handler.SupplyChainTrackGet)
		r.With(RequireRole(domain.RoleAdmin, domain.RoleAnalyst)).
			Get("/supply-chain/analytics", handler.SupplyChainAnalytics)
		r.With(RequireRole(domain.RoleAdmin)).
			Post("/supply-chain/analytics", handler.SupplyChainAdmin)

		// Ledger
		r.Post("/blockchain/verify", handler.BlockchainVerify)
		r.With(RequireRole(domain.RoleAdmin)).
			Post("/blockchain/create-record", handler.BlockchainCreateRecord)

		// Rule management (admin)
		r.Route("/rules", func(r chi.Router) {
			r.Use(RequireRole(domain.RoleAdmin))
			r.Get("/", handler.ListRules)
			r.Post("/", handler.CreateRule)
			r.Post("/reload", handler.ReloadRules)
		})

		// Screening alerts
		r.With(RequireRole(domain.RoleAdmin, domain.RoleAnalyst)).
			Get("/alerts", handler.ListAlerts)

		// Vendor registry
		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", handler.ListVendors)
			r.Get("/{id}", handler.GetVendor)

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleAdmin))
				r.Post("/", handler.CreateVendor)
				r.Put("/{id}", handler.UpdateVendor)
				r.Delete("/{id}", handler.DeleteVendor)
				r.Post("/{id}/verify", handler.VerifyVendor)
			})
		})
	})

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the handler for testing.
func (s *Server) Handler() *Handler {
	return s.handler
}
