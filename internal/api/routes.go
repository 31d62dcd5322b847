package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"losadmin/internal/api/middleware"
	"losadmin/internal/api/registry"
	"losadmin/internal/handlers"
	"losadmin/internal/routes"
)

func (s *Server) registerRoutes() error {
	if s.deps.Backend == nil || s.deps.Issuer == nil {
		return errors.New("dev server needs a backend and a token issuer")
	}

	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "LOS admin dev server")
	})
	s.echo.GET("/health", s.healthCheck)
	if s.deps.Gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{DisableCompression: true})))
	}

	authHandler, err := handlers.NewAuthHandler(s.config.Admin, s.deps.Issuer, s.deps.LoginLimiter)
	if err != nil {
		return err
	}
	routes.SetupAuthRoutes(s.echo, authHandler)

	if s.deps.Artifacts != nil {
		routes.SetupArtifactRoutes(s.echo, s.deps.Artifacts)
	}

	auth := middleware.NewAuthMiddleware(s.deps.Issuer)
	registry.RegisterCRUDRoutes(s.echo, s.deps.Backend, auth.Middleware())
	return nil
}
