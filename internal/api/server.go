package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"losadmin/internal/api/validator"
	"losadmin/internal/backend"
	"losadmin/internal/config"
	"losadmin/internal/handlers"
	"losadmin/internal/ratelimit"
	"losadmin/internal/tokens"

	"losadmin/internal/utils/logger"
)

var log = logger.New("API-Server")

// Deps is what the dev server serves. Backend answers every resource route
// and Issuer signs tokens; the rest may be nil. Artifacts backs /artifacts/,
// LoginLimiter throttles /api/token/ per email and Gatherer backs /metrics.
type Deps struct {
	Backend      backend.Backend
	Artifacts    handlers.ArtifactSource
	Issuer       *tokens.Issuer
	LoginLimiter *ratelimit.SlidingWindow
	Gatherer     prometheus.Gatherer
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	deps   Deps
}

// NewServer builds the REST server that stands in for the LOS backend.
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	e := echo.New()
	e.HideBanner = true

	// Create custom validator
	e.Validator = validator.NewValidator()

	// Configure middleware
	if logger.ParseLevel(cfg.Log.Level) == logger.LevelDebug {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentLength},
	}))
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: 30 * time.Second,
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(50),
		Burst:     100,
		ExpiresIn: 3 * time.Minute,
	})))

	// Custom error handler
	e.HTTPErrorHandler = customHTTPErrorHandler

	s := &Server{
		echo:   e,
		config: cfg,
		deps:   deps,
	}

	if err := s.registerRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	err := s.echo.Start(fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port))
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Health check endpoint
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"mode":   s.deps.Backend.Mode(),
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Custom HTTP error handler. Bodies carry "error", which the console shows
// on failed logins.
func customHTTPErrorHandler(err error, c echo.Context) {
	var (
		code    = http.StatusInternalServerError
		message interface{}
	)

	var he *echo.HTTPError
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &he):
		code = he.Code
		message = he.Message
	case errors.As(err, &ve):
		code = http.StatusBadRequest
		message = formatValidationErrors(ve)
	case backend.IsNotFound(err):
		code = http.StatusNotFound
		message = err.Error()
	case backend.IsNotValid(err):
		code = http.StatusBadRequest
		message = err.Error()
	default:
		log.Warn("Unhandled error on %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		message = http.StatusText(code)
	}

	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]interface{}{
				"error": message,
				"code":  code,
				"time":  time.Now().Format(time.RFC3339),
			})
		}
		if err != nil {
			c.Echo().Logger.Error(err)
		}
	}
}

// formatValidationErrors formats validation errors into a map
func formatValidationErrors(errors validator.ValidationErrors) map[string]string {
	errMap := make(map[string]string)
	for _, err := range errors {
		field := err.Field()
		tag := err.Tag()
		param := err.Param()

		switch tag {
		case "required":
			errMap[field] = fmt.Sprintf("%s is required", field)
		case "email":
			errMap[field] = fmt.Sprintf("%s must be a valid email", field)
		case "min":
			errMap[field] = fmt.Sprintf("%s must be at least %s", field, param)
		case "url":
			errMap[field] = fmt.Sprintf("%s must be a valid URL", field)
		case "oneof":
			errMap[field] = fmt.Sprintf("%s must be one of [%s]", field, param)
		case "gt":
			errMap[field] = fmt.Sprintf("%s must be greater than %s", field, param)
		case "lead_status":
			errMap[field] = fmt.Sprintf("%s must be one of: NEW, CONTACTED, CONVERTED", field)
		case "notice_type":
			errMap[field] = fmt.Sprintf("%s must be one of: SMS, EMAIL, WHATSAPP, LEGAL", field)
		default:
			errMap[field] = fmt.Sprintf("%s failed validation: %s", field, tag)
		}
	}
	return errMap
}
