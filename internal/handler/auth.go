package handler

import (
	"net/http" // HTTP status codes
	"strings"  // string normalisation
	"time"     // token expiry

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing
	"go.uber.org/zap"

	"github.com/kumbhsaathi/kumbhsaathi/internal/config"
	"github.com/kumbhsaathi/kumbhsaathi/internal/model"
	"github.com/kumbhsaathi/kumbhsaathi/internal/utils"
)

// AuthHandler issues console access tokens.  Each console role has one
// shared password whose bcrypt hash comes from configuration.  This is a
// shared secret gate for the control room, not per-user authentication.
type AuthHandler struct {
	Cfg config.Config
	Log *zap.Logger
}

// NewAuthHandler returns an AuthHandler for cfg.
func NewAuthHandler(cfg config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Log: log}
}

type loginReq struct {
	Role     string `json:"role"` // ADMIN | POLICE
	Password string `json:"password"`
}

type loginResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
	Role    string    `json:"role"`
}

// Login handles POST /v1/auth/login.  It compares the password with the
// hash configured for the requested role and returns a signed access
// token.  Wrong passwords and roles without a configured hash both yield
// 401 so the response does not reveal which roles are enabled.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid request body")
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleAdmin
	}
	if req.Password == "" {
		return failMsg(c, http.StatusBadRequest, "password is required")
	}
	var hash string
	switch role {
	case model.RoleAdmin:
		hash = h.Cfg.AdminPasswordHash
	case model.RolePolice:
		hash = h.Cfg.PolicePasswordHash
	default:
		return failMsg(c, http.StatusBadRequest, "role must be ADMIN or POLICE")
	}
	if !utils.VerifyPassword(hash, req.Password) {
		h.Log.Warn("console login rejected", zap.String("role", role), zap.String("ip", c.RealIP()))
		return failMsg(c, http.StatusUnauthorized, "Incorrect password. Please try again.")
	}
	subject := strings.ToLower(role) + "-console"
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, subject, role, h.Cfg.AccessTTLMin)
	if err != nil {
		h.Log.Error("issue access token failed", zap.Error(err))
		return failMsg(c, http.StatusInternalServerError, "could not create session")
	}
	h.Log.Info("console login", zap.String("role", role), zap.String("ip", c.RealIP()))
	return ok(c, http.StatusOK, loginResp{Token: access.Token, Expires: access.Exp, Role: role})
}
