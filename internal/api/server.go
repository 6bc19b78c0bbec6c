// Package api exposes the ledger and settlement engine over HTTP.
//
// The core never assumes a transport: handlers translate JSON requests
// into service calls and service errors back into status codes, nothing
// more. Clients poll the ledger view; the notification bus is a liveness
// optimization handled elsewhere.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"splitledger/internal/auth"
	"splitledger/internal/middleware"
	"splitledger/internal/service"
	"splitledger/internal/storage"
)

// Server is the splitledger HTTP API server.
type Server struct {
	store          storage.Store
	settlements    *service.SettlementService
	auth           *service.AuthService
	jwtManager     *auth.JWTManager
	metricsEnabled bool
}

// NewServer creates an API server over the given services.
func NewServer(store storage.Store, settlements *service.SettlementService, authSvc *service.AuthService, jwtManager *auth.JWTManager) *Server {
	return &Server{
		store:       store,
		settlements: settlements,
		auth:        authSvc,
		jwtManager:  jwtManager,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwtManager))

			r.Post("/groups", s.handleCreateGroup)
			r.Route("/groups/{groupID}", func(r chi.Router) {
				r.Get("/", s.handleGetGroup)
				r.Get("/ledger", s.handleLedgerView)
				r.Post("/transactions", s.handleCreateTransaction)
				r.Get("/transactions", s.handleListTransactions)
				r.Delete("/transactions/{txID}", s.handleDeleteTransaction)
				r.Post("/settlements", s.handleCreateSettlement)
			})
			r.Post("/settlements/{settlementID}/confirm", s.handleResolveSettlement(service.ActionConfirm))
			r.Post("/settlements/{settlementID}/reject", s.handleResolveSettlement(service.ActionReject))
		})
	})

	return r
}
