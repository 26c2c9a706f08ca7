package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"hr-approvals/internal/middleware"
)

// RouterOptions configures the cross-cutting middleware of the router.
type RouterOptions struct {
	// Authenticate guards every /v1 route. Nil leaves /v1 unauthenticated,
	// so handlers answer 401 for lack of a principal.
	Authenticate   func(http.Handler) http.Handler
	RateLimit      *middleware.RateLimitConfig
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter mounts the handler under /v1 with request ids, recovery, CORS,
// authentication, and per-caller rate limiting. ctx bounds background work of
// the middleware.
func NewRouter(ctx context.Context, h *Handler, opts RouterOptions) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		if opts.Authenticate != nil {
			r.Use(opts.Authenticate)
		}
		if opts.RateLimit != nil {
			r.Use(middleware.RateLimiter(ctx, *opts.RateLimit))
		}
		r.Use(chimw.Timeout(opts.RequestTimeout))

		r.Route("/leave-requests", func(r chi.Router) {
			r.Post("/", h.createLeaveRequest)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getLeaveRequest)
				r.Post("/supervisor-approve", h.supervisorApprove)
				r.Post("/approve", h.finalApprove)
				r.Post("/reject", h.reject)
				r.Post("/cancel", h.cancel)
				r.Post("/mark-applied", h.markApplied)
			})
		})

		r.Route("/employees/{id}", func(r chi.Router) {
			r.Get("/approvers", h.listApprovers)
			r.Get("/balances/{year}", h.getBalance)
			r.Get("/leave-requests", h.listEmployeeLeaveRequests)
			r.Get("/delegations", h.listDelegations)
		})

		r.Post("/delegations", h.createDelegation)
		r.Delete("/delegations/{id}", h.revokeDelegation)

		r.Get("/audit", h.listAudit)
	})

	return r
}
