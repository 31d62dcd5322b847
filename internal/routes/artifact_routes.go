package routes

import (
	"github.com/labstack/echo/v4"

	"losadmin/internal/handlers"
	"losadmin/internal/utils/logger"
)

// SetupArtifactRoutes serves report files kept in memory. Download URLs are
// handed out by the report endpoints, so the route is public.
func SetupArtifactRoutes(e *echo.Echo, source handlers.ArtifactSource) {
	log := logger.New("artifact_routes")

	artifactHandler := handlers.NewArtifactHandler(source)
	e.GET("/artifacts/:name", artifactHandler.Download)

	log.Success("Artifact routes initialized successfully")
}
