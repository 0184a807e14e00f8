package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/taskhub-dev/taskhub/internal/config"
	"github.com/taskhub-dev/taskhub/internal/http/handlers"
	"github.com/taskhub-dev/taskhub/internal/http/middlewares"
	"github.com/taskhub-dev/taskhub/internal/observability"
	"github.com/taskhub-dev/taskhub/internal/session"
)

// Deps carries the injectable backings: the in-memory store in tests, the
// postgres repos in production.
type Deps struct {
	Users    handlers.UserStore
	Projects handlers.ProjectStore
	Tasks    handlers.TaskStore
	Sessions *session.Registry
	Events   handlers.DomainEvents
	Prom     *observability.Prom
	Ping     func() error
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("taskhub"))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health + metrics
	health := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)

	authMW := middlewares.NewAuthMiddleware(deps.Sessions)
	ownerMW := middlewares.NewOwnerMiddleware(deps.Projects)

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Sessions)
	projectsHandler := handlers.NewProjectsHandler(deps.Projects, deps.Tasks, deps.Events)
	tasksHandler := handlers.NewTasksHandler(deps.Tasks, deps.Events)

	// auth surface; logout extracts its own token so it can answer 400
	// instead of the gate's 401
	auth := r.Group("/auth")
	auth.POST("/register", limiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Register)
	auth.POST("/login", limiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authMW.RequireAuth(), authHandler.Me)

	// protected hierarchy: gate -> ownership -> lifecycle
	projects := r.Group("/projects", authMW.RequireAuth(), limiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	projects.GET("", projectsHandler.List)
	projects.POST("", projectsHandler.Create)

	owned := projects.Group("/:project", ownerMW.RequireProjectOwner())
	owned.GET("", projectsHandler.Show)
	owned.PUT("", projectsHandler.Update)
	owned.DELETE("", projectsHandler.Delete)

	owned.GET("/tasks", tasksHandler.List)
	owned.POST("/tasks", tasksHandler.Create)
	owned.GET("/tasks/:task", tasksHandler.Show)
	owned.PUT("/tasks/:task", tasksHandler.Update)
	owned.DELETE("/tasks/:task", tasksHandler.Delete)
	owned.POST("/tasks/:task/status", tasksHandler.ChangeStatus)

	return r
}
