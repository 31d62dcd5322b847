package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"losadmin/internal/tokens"
	"losadmin/internal/utils/logger"
)

var log = logger.New("auth_middleware")

type AuthMiddleware struct {
	issuer *tokens.Issuer
}

func NewAuthMiddleware(issuer *tokens.Issuer) *AuthMiddleware {
	return &AuthMiddleware{issuer: issuer}
}

// Middleware rejects requests without a valid access token with 401, which
// is what ends the console session.
func (m *AuthMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			return m.validateJWT(c, tokenParts[1], next)
		}
	}
}

func (m *AuthMiddleware) validateJWT(c echo.Context, tokenString string, next echo.HandlerFunc) error {
	claims, err := m.issuer.Parse(tokenString, tokens.TypeAccess)
	if err != nil {
		log.Warn("Rejected token: %v", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	// Set context values
	c.Set("userID", claims.UserID)
	c.Set("email", claims.Email)
	c.Set("role", claims.Role)

	return next(c)
}

// GetUserID Helper functions to get values from context
func GetUserID(c echo.Context) string {
	if id, ok := c.Get("userID").(string); ok {
		return id
	}
	return ""
}

func GetUserRole(c echo.Context) string {
	if role, ok := c.Get("role").(string); ok {
		return role
	}
	return ""
}
