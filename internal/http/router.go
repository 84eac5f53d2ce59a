package http

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Accounts interface {
	handlers.AccountService
	middlewares.UserResolver
}

type Tokens interface {
	handlers.TokenIssuer
	middlewares.TokenVerifier
}

// Deps are the collaborators the router wires into handlers. Prom, Gatherer
// and RateCounter are optional.
type Deps struct {
	Accounts Accounts
	Tokens   Tokens
	Tasks    handlers.TaskStore
	Health   *handlers.HealthHandler

	Prom        *observability.Prom
	Gatherer    prometheus.Gatherer
	RateCounter middlewares.WindowCounter
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if !cfg.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// middleware
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(gin.CustomRecovery(func(c *gin.Context, rec any) {
		log.ErrorContext(c.Request.Context(), "panic_recovered", "panic", rec, "request_id", middlewares.RequestIDFrom(c))
		handlers.RespondError(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
		c.Abort()
	}))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders(!cfg.IsDevLike()))
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	if cfg.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	}
	r.Use(middlewares.RequireJSON())

	r.NoRoute(func(c *gin.Context) {
		handlers.RespondNotFound(c, "Route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.RespondError(c, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	// health and docs
	health := deps.Health
	if health == nil {
		health = handlers.NewHealthHandler(cfg.ServiceName, "dev", nil)
	}
	r.GET("/", health.Root)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	docs := handlers.NewDocsHandler(cfg.ServiceName+" API", "/docs/openapi.yaml")
	r.GET("/docs", docs.UI)
	r.GET("/docs/openapi.yaml", docs.Document)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	counter := deps.RateCounter
	if counter == nil {
		counter = middlewares.NewMemoryCounter()
	}
	authLimiter := middlewares.NewRateLimiter(counter, cfg.AuthRateLimit, cfg.AuthRateWindow)
	authLimit := authLimiter.RateLimiterMiddleware(middlewares.KeyByIP)
	userLimit := authLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP)

	requireAuth := middlewares.NewAuthMiddleware(deps.Tokens, deps.Accounts).RequireAuth()

	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.Tokens)
	tasksHandler := handlers.NewTasksHandler(deps.Tasks)

	api := r.Group("/api")
	api.GET("/health", health.Healthz)

	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", authLimit, authHandler.Register)
	authRoutes.POST("/login", authLimit, authHandler.Login)
	authRoutes.POST("/logout", requireAuth, authHandler.Logout)
	authRoutes.GET("/me", requireAuth, authHandler.Me)
	authRoutes.PUT("/password", requireAuth, userLimit, authHandler.ChangePassword)

	tasks := api.Group("/tasks", requireAuth)
	tasks.GET("", tasksHandler.List)
	tasks.POST("", tasksHandler.Create)
	tasks.GET("/:id", tasksHandler.Get)
	tasks.PUT("/:id", tasksHandler.Update)
	tasks.PATCH("/:id", tasksHandler.Update)
	tasks.DELETE("/:id", tasksHandler.Delete)

	return r
}
