package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"github.com/sponsormatch/matchbot/internal/api/handler"
	"github.com/sponsormatch/matchbot/internal/api/middleware"
	"github.com/sponsormatch/matchbot/internal/api/token"
	"github.com/sponsormatch/matchbot/internal/core/access"
	"github.com/sponsormatch/matchbot/internal/core/ports"
	"github.com/sponsormatch/matchbot/internal/security"

	_ "github.com/sponsormatch/matchbot/docs"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Sessions ports.SessionManager
	Tokens   *token.Issuer
	Gate     *access.Gate
	Feed     handler.NotificationFeed
	Checks   []handler.DependencyCheck
	Log      zerolog.Logger
	// LoginRateLimit is requests per second per client IP on login and
	// register. Zero disables the limiter.
	LoginRateLimit float64
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(d.Log))
	// HTTP metrics live in a per-router registry; /metrics serves it together
	// with the default registry holding the session metrics.
	httpMetrics := prometheus.NewRegistry()
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "matchbot",
		Registerer: httpMetrics,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Sessions, d.Tokens, security.NewSanitizer())
	viewHandler := handler.NewViewHandler(d.Gate, d.Sessions)
	notificationHandler := handler.NewNotificationHandler(d.Feed)
	sessionToken := middleware.SessionToken(d.Tokens, d.Sessions)

	// --- Auth routes ---
	auth := e.Group("/auth")
	limited := []echo.MiddlewareFunc{}
	if d.LoginRateLimit > 0 {
		limited = append(limited, loginRateLimiter(d.LoginRateLimit))
	}
	auth.POST("/login", authHandler.Login, limited...)
	auth.POST("/register", authHandler.Register, limited...)
	auth.POST("/logout", authHandler.Logout)
	auth.PATCH("/profile", authHandler.UpdateProfile, sessionToken)
	auth.GET("/session", authHandler.Session)

	// --- Views ---
	e.GET("/views", viewHandler.Render, middleware.ViewGate(d.Gate, d.Sessions))
	e.GET("/views/*", viewHandler.Render, middleware.ViewGate(d.Gate, d.Sessions))
	e.GET("/navigation", viewHandler.Navigation)
	e.GET("/notifications", notificationHandler.List)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{httpMetrics, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func loginRateLimiter(perSecond float64) echo.MiddlewareFunc {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts, try again later")
		},
	})
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
