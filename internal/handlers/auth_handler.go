package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"losadmin/internal/api/validator"
	"losadmin/internal/config"
	"losadmin/internal/models"
	"losadmin/internal/ratelimit"
	"losadmin/internal/tokens"
	"losadmin/internal/utils/logger"
)

// AdminUserID is the subject of tokens issued to the configured admin.
const AdminUserID = "u-admin"

const msgBadCredentials = "No active account found with the given credentials"

type AuthHandler struct {
	email   string
	hash    []byte
	issuer  *tokens.Issuer
	limiter *ratelimit.SlidingWindow
	log     *logger.Logger
}

// NewAuthHandler accepts the single admin credential pair. limiter may be nil.
func NewAuthHandler(admin config.AdminConfig, issuer *tokens.Issuer, limiter *ratelimit.SlidingWindow) (*AuthHandler, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{
		email:   strings.ToLower(admin.Email),
		hash:    hash,
		issuer:  issuer,
		limiter: limiter,
		log:     logger.New("AuthHandler"),
	}, nil
}

// Login exchanges email and password for an access/refresh pair.
// POST /api/token/
func (h *AuthHandler) Login(c echo.Context) error {
	var req validator.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if h.limiter != nil {
		allowed, err := h.limiter.Allow(c.Request().Context(), email)
		if err != nil {
			h.log.Warn("Rate limiter unavailable: %v", err)
		} else if !allowed {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many login attempts, try again later")
		}
	}

	if email != h.email {
		return echo.NewHTTPError(http.StatusUnauthorized, msgBadCredentials)
	}
	if err := bcrypt.CompareHashAndPassword(h.hash, []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, msgBadCredentials)
	}

	pair, err := h.issuer.IssuePair(tokens.Subject{UserID: AdminUserID, Email: email, Role: models.SuperAdminRole})
	if err != nil {
		return h.log.Error("Failed to issue tokens", err)
	}

	h.log.Success("Issued tokens for %s", email)
	return c.JSON(http.StatusOK, pair)
}

// RefreshToken trades a refresh token for a new access token.
// POST /api/token/refresh/
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req validator.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	claims, err := h.issuer.Parse(req.Refresh, tokens.TypeRefresh)
	if err != nil || claims.UserID != AdminUserID {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token is invalid or expired")
	}

	pair, err := h.issuer.IssuePair(tokens.Subject{UserID: AdminUserID, Email: h.email, Role: models.SuperAdminRole})
	if err != nil {
		return h.log.Error("Failed to issue tokens", err)
	}
	return c.JSON(http.StatusOK, models.TokenPair{Access: pair.Access, Refresh: req.Refresh})
}
