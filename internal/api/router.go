package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hugh/dealflow/internal/activities"
	"github.com/hugh/dealflow/internal/analytics"
	"github.com/hugh/dealflow/internal/api/handlers"
	"github.com/hugh/dealflow/internal/api/middleware"
	"github.com/hugh/dealflow/internal/api/respond"
	"github.com/hugh/dealflow/internal/auth"
	"github.com/hugh/dealflow/internal/contacts"
	"github.com/hugh/dealflow/internal/deals"
	"github.com/hugh/dealflow/internal/organizations"
	"github.com/hugh/dealflow/internal/tasks"
	"github.com/hugh/dealflow/internal/tenancy"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB     *gorm.DB
	Redis  redis.UniversalClient
	Logger *slog.Logger

	JWTService    *auth.JWTService
	AuthService   *auth.Service
	Organizations *organizations.Service
	Resolver      *tenancy.Resolver
	Contacts      *contacts.Service
	Activities    *activities.Service
	Deals         *deals.Service
	Tasks         *tasks.Service
	Analytics     *analytics.Aggregator

	AllowedOrigins []string
	RateLimitReqs  int // per client IP per window; 0 disables
	RateLimitSecs  int
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Metrics)

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.OrganizationHeader},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.Logger)
	orgHandler := handlers.NewOrganizationHandler(cfg.Organizations, cfg.Logger)
	contactHandler := handlers.NewContactHandler(cfg.Contacts, cfg.Logger)
	dealHandler := handlers.NewDealHandler(cfg.Deals, cfg.Logger)
	activityHandler := handlers.NewActivityHandler(cfg.Activities, cfg.Logger)
	taskHandler := handlers.NewTaskHandler(cfg.Tasks, cfg.Logger)
	analyticsHandler := handlers.NewAnalyticsHandler(cfg.Analytics, cfg.Logger)

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))
			if cfg.RateLimitReqs > 0 {
				r.Use(middleware.RateLimitByUser(cfg.RateLimitReqs, cfg.RateLimitSecs))
			}

			// Identity only
			r.Get("/me", authHandler.Me)
			r.Get("/organizations/me", orgHandler.Mine)

			// Organization scoped
			r.Group(func(r chi.Router) {
				r.Use(middleware.Organization(cfg.Resolver, cfg.Logger))

				r.Post("/organizations/members", orgHandler.Invite)

				r.Route("/contacts", func(r chi.Router) {
					r.Get("/", contactHandler.List)
					r.Post("/", contactHandler.Create)
					r.Get("/{id}", contactHandler.Get)
					r.Delete("/{id}", contactHandler.Delete)
				})

				r.Route("/deals", func(r chi.Router) {
					r.Get("/", dealHandler.List)
					r.Post("/", dealHandler.Create)
					r.Get("/{id}", dealHandler.Get)
					r.Patch("/{id}", dealHandler.Update)
					r.Get("/{id}/activities", activityHandler.List)
					r.Post("/{id}/activities", activityHandler.Create)
				})

				r.Route("/tasks", func(r chi.Router) {
					r.Get("/", taskHandler.List)
					r.Post("/", taskHandler.Create)
				})

				r.Route("/analytics/deals", func(r chi.Router) {
					r.Get("/summary", analyticsHandler.Summary)
					r.Get("/funnel", analyticsHandler.Funnel)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Message(w, http.StatusNotFound, "Not found")
	})

	return &Router{r}
}
