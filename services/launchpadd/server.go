package launchpadd

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"launchpad/services/launchpadd/middleware"
)

// Route groups share the names used for rate limits and metrics.
const (
	groupPoint   = "point"
	groupTier    = "tier"
	groupFactory = "factory"
	groupIDO     = "ido"
	groupTokens  = "tokens"
	groupEvents  = "events"
)

// ServerOptions configures the HTTP surface.
type ServerOptions struct {
	Auth        middleware.AuthConfig
	RateLimit   middleware.RateLimit
	LogRequests bool
}

// Server exposes the launchpad modules over HTTP.
type Server struct {
	app     *App
	index   *EventIndex
	hub     *Hub
	logger  *slog.Logger
	auth    *middleware.Authenticator
	limiter *middleware.RateLimiter
	obs     *middleware.Observability
}

func NewServer(app *App, index *EventIndex, hub *Hub, opts ServerOptions, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	limits := map[string]middleware.RateLimit{}
	if opts.RateLimit.RequestsPerMinute > 0 {
		for _, group := range []string{groupPoint, groupTier, groupFactory, groupIDO, groupTokens} {
			limits[group] = opts.RateLimit
		}
	}
	return &Server{
		app:     app,
		index:   index,
		hub:     hub,
		logger:  logger,
		auth:    middleware.NewAuthenticator(opts.Auth, logger),
		limiter: middleware.NewRateLimiter(limits, logger),
		obs:     middleware.NewObservability(middleware.ObservabilityConfig{LogRequests: opts.LogRequests}, logger),
	}
}

// mutating authenticates the caller and then applies the group rate limit.
func (s *Server) mutating(group string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{s.auth.Middleware, s.limiter.Middleware(group)}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDs)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":      "ok",
			"now":         s.app.NowTime(),
			"subscribers": s.hub.Subscribers(),
			"dropped":     s.hub.Dropped(),
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v chi.Router) {
		v.Route("/point", func(pr chi.Router) {
			pr.Use(s.obs.Middleware(groupPoint))
			pr.Get("/tokens", s.handleListPointTokens)
			pr.Get("/tokens/{index}", s.handleGetPointToken)
			pr.Get("/decimal", s.handleGetDecimal)
			pr.Get("/{address}", s.handleGetPoint)
			pr.Group(func(mr chi.Router) {
				mr.Use(s.mutating(groupPoint)...)
				mr.Post("/tokens", s.handleInsertPointToken)
				mr.Delete("/tokens/{index}", s.handleRemovePointToken)
				mr.Put("/decimal", s.handleSetDecimal)
			})
		})

		v.Group(func(tr chi.Router) {
			tr.Use(s.obs.Middleware(groupTier))
			tr.Get("/tiers", s.handleListTiers)
			tr.Get("/tiers/{index}", s.handleGetTier)
			tr.Get("/multiplier/{address}", s.handleGetMultiplier)
			tr.Group(func(mr chi.Router) {
				mr.Use(s.mutating(groupTier)...)
				mr.Post("/tiers", s.handleInsertTier)
				mr.Put("/tiers/{index}", s.handleUpdateTier)
				mr.Delete("/tiers/{index}", s.handleRemoveTier)
			})
		})

		v.Group(func(fr chi.Router) {
			fr.Use(s.obs.Middleware(groupFactory))
			fr.Get("/operators", s.handleListOperators)
			fr.Get("/fees", s.handleGetFees)
			fr.Group(func(mr chi.Router) {
				mr.Use(s.mutating(groupFactory)...)
				mr.Post("/operators", s.handleInsertOperator)
				mr.Delete("/operators/{index}", s.handleRemoveOperator)
				mr.Put("/fees", s.handleSetFees)
				mr.Post("/idos", s.handleCreateIDO)
				mr.Post("/idos/{index}/finalize", s.handleFinalize)
				mr.Post("/idos/{index}/emergency-refund", s.handleEmergencyRefund)
				mr.Post("/idos/{index}/reclaim", s.handleReclaim)
			})
		})

		v.Group(func(ir chi.Router) {
			ir.Use(s.obs.Middleware(groupIDO))
			ir.Get("/idos", s.handleListIDOs)
			ir.Get("/idos/{index}", s.handleGetIDO)
			ir.Get("/idos/{index}/funders", s.handleListFunders)
			ir.Get("/idos/{index}/accounts/{address}", s.handleGetAccount)
			ir.Group(func(mr chi.Router) {
				mr.Use(s.mutating(groupIDO)...)
				mr.Put("/idos/{index}/config", s.handleConfigure)
				mr.Post("/idos/{index}/whitelist", s.handleWhitelist)
				mr.Post("/idos/{index}/fund", s.handleFund)
				mr.Post("/idos/{index}/claim", s.handleClaim)
				mr.Post("/idos/{index}/refund", s.handleRefund)
			})
		})

		v.Route("/tokens", func(tr chi.Router) {
			tr.Use(s.obs.Middleware(groupTokens))
			tr.Get("/", s.handleListTokens)
			tr.Get("/{token}", s.handleGetToken)
			tr.Get("/{token}/{address}", s.handleGetBalance)
			tr.With(s.mutating(groupTokens)...).Post("/{token}/approve", s.handleApprove)
		})

		v.Route("/events", func(er chi.Router) {
			er.Use(s.obs.Middleware(groupEvents))
			er.Get("/", s.handleQueryEvents)
			er.Get("/stream", s.hub.ServeHTTP)
		})
	})
	return r
}
