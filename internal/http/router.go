package router

import (
	"net/http"
	"time"

	"github.com/Renal37/fuel-orders/internal/logger"
	"github.com/Renal37/fuel-orders/internal/metrics"
	"github.com/Renal37/fuel-orders/internal/middlewares"
	"github.com/Renal37/fuel-orders/internal/models"
	"github.com/go-chi/chi/v5"
)

type Config struct {
	Endpoint     string
	CookieSecure bool
}

type Router struct {
	config   Config
	services middlewares.Services
}

func New(
	config Config,
	authService models.AuthService,
	jwtService models.JWTService,
	orderService models.OrderService,
	auditService models.AuditService,
) *Router {
	return &Router{
		config: config,
		services: middlewares.Services{
			Auth:  authService,
			JWT:   jwtService,
			Order: orderService,
			Audit: auditService,
		},
	}
}

func (router *Router) get() chi.Router {
	r := chi.NewRouter()
	cookie := middlewares.SessionCookie{Secure: router.config.CookieSecure}

	r.Use(
		metrics.Middleware,
		logger.RequestLogger,
		middlewares.ServiceInjectorMiddleware(router.services),
	)

	r.Get("/health", Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middlewares.JSONMiddleware[models.Registration]).Post("/register", Register)
		r.With(middlewares.JSONMiddleware[models.Credentials]).Post("/login", Login(cookie))
		r.Post("/logout", Logout(cookie))
	})

	r.With(middlewares.SessionGate(cookie).Middleware).Get("/api/session", GetSession)

	r.Route("/api/operator", func(r chi.Router) {
		r.Use(middlewares.SessionGate(cookie).WithRoles(models.RoleAircraftOperator).Middleware)

		r.With(middlewares.JSONMiddleware[models.NewOrder]).Post("/orders", CreateOrder)
	})

	r.Route("/api/manager", func(r chi.Router) {
		r.Use(middlewares.SessionGate(cookie).WithRoles(models.RoleOperationsManager).Middleware)

		r.Get("/orders", ListOrders)
		r.With(middlewares.JSONMiddleware[advanceRequest]).Post("/orders/{id}/advance", ProposeAdvance)
		r.With(middlewares.JSONMiddleware[statusChangeRequest]).Post("/orders/{id}/status", ChangeStatus)
		r.Get("/orders/{id}/audit", GetAuditTrail)
	})

	return r
}

// Server returns the HTTP server of the console. The caller owns its lifecycle.
func (router *Router) Server() *http.Server {
	return &http.Server{
		Addr:              router.config.Endpoint,
		Handler:           router.get(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
