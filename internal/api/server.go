package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/routemanager/internal/api/handler"
	mw "github.com/edvin/routemanager/internal/api/middleware"
	"github.com/edvin/routemanager/internal/api/response"
	"github.com/edvin/routemanager/internal/core"
)

const welcomeMessage = "Welcome to MPBGP EVPN Route Manager"

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
}

func NewServer(logger zerolog.Logger, services *core.Services) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		response.WriteMessage(w, welcomeMessage)
	})

	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		vrf := handler.NewVRF(s.services.VRF)
		rt := handler.NewRouteTarget(s.services.VRF)
		prefix := handler.NewPrefix(s.services.VRF)

		// VRFs. The collection answers with and without the trailing slash.
		r.Get("/vrfs", vrf.List)
		r.Get("/vrfs/", vrf.List)
		r.Post("/vrfs", vrf.Create)
		r.Post("/vrfs/", vrf.Create)
		r.Get("/vrfs/{namespace}/{name}", vrf.Get)
		r.Delete("/vrfs/{namespace}/{name}", vrf.Delete)

		// Route targets
		r.Post("/vrfs/{namespace}/{name}/targets/import", rt.AddImport)
		r.Post("/vrfs/{namespace}/{name}/targets/export", rt.AddExport)
		r.Delete("/vrfs/{namespace}/{name}/targets/import/{rt}", rt.RemoveImport)
		r.Delete("/vrfs/{namespace}/{name}/targets/export/{rt}", rt.RemoveExport)

		// Prefixes
		r.Post("/vrfs/{namespace}/{name}/prefixes", prefix.Add)
		r.Delete("/vrfs/{namespace}/{name}/prefixes", prefix.Remove)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.services.Inventory.Ping(ctx); err != nil {
		checks["graph_store"] = err.Error()
		healthy = false
	} else {
		checks["graph_store"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
