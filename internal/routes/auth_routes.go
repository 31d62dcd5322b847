package routes

import (
	"github.com/labstack/echo/v4"

	"losadmin/internal/handlers"
)

// SetupAuthRoutes registers the public token endpoints.
func SetupAuthRoutes(e *echo.Echo, authHandler *handlers.AuthHandler) {
	token := e.Group("/api/token")

	token.POST("/", authHandler.Login)
	token.POST("/refresh/", authHandler.RefreshToken)
}
