package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"losadmin/internal/models"
)

// Permission scopes
const (
	ScopeAdmin = "admin"
	ScopeRead  = "read"
	ScopeWrite = "write"
)

// ValidateMethodPermission validates if a given scope allows a specific HTTP method
func ValidateMethodPermission(method string, scope string) bool {
	switch scope {
	case ScopeAdmin:
		return true
	case ScopeWrite:
		return method == http.MethodPost || method == http.MethodPut ||
			method == http.MethodDelete || method == http.MethodPatch
	case ScopeRead:
		return method == http.MethodGet
	default:
		return false
	}
}

// ScopesForRole maps a token role to its scopes. Roles without an entry only read.
func ScopesForRole(role string) []string {
	switch role {
	case models.SuperAdminRole:
		return []string{ScopeAdmin}
	case "Credit Manager":
		return []string{ScopeRead, ScopeWrite}
	default:
		return []string{ScopeRead}
	}
}

// RequirePermissions checks the request method against the scopes of the token role
func RequirePermissions() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method

			for _, scope := range ScopesForRole(GetUserRole(c)) {
				if ValidateMethodPermission(method, scope) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
		}
	}
}
