package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kivustream/streampass/internal/utils"
)

// TokenHandler mints short-lived viewer tokens in development
// environments.  Real session issuance belongs to the identity service;
// this endpoint only exists so the viewer-scoped surface can be
// exercised without it.  It refuses to serve outside the dev
// environment.
type TokenHandler struct {
	JWTSecret string
	TTLMin    int
	Env       string
}

// NewTokenHandler constructs a TokenHandler from the loaded config values.
func NewTokenHandler(secret string, ttlMin int, env string) *TokenHandler {
	return &TokenHandler{JWTSecret: secret, TTLMin: ttlMin, Env: env}
}

// DevToken handles POST /v1/auth/dev-token.  The body names the viewer
// ID to impersonate; the response carries a signed bearer token and its
// expiry.
func (h *TokenHandler) DevToken(c echo.Context) error {
	if h.Env != "dev" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	var body struct {
		UserID uint64 `json:"user_id"`
	}
	if err := c.Bind(&body); err != nil || body.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}

	tok, err := utils.NewAccessToken(h.JWTSecret, body.UserID, h.TTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to sign token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"expires_at":   tok.Exp,
	})
}
