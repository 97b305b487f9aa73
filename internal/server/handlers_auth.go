package server

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/models"
)

// adminSubject is the sub claim of every admin session.
const adminSubject = "admin"

type loginRequest struct {
	Password string `json:"password"`
}

// handleAuthLogin handles POST /api/auth/login.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Password == "" {
		WriteError(w, http.StatusBadRequest, "password is required")
		return
	}

	auth := &s.app.Config.Auth
	if auth.AdminPasswordHash == "" {
		WriteError(w, http.StatusServiceUnavailable, "admin login is not configured")
		return
	}

	// bcrypt only looks at the first 72 bytes
	passwordBytes := []byte(req.Password)
	if len(passwordBytes) > 72 {
		passwordBytes = passwordBytes[:72]
	}
	if err := bcrypt.CompareHashAndPassword([]byte(auth.AdminPasswordHash), passwordBytes); err != nil {
		s.logger.Info().Msg("Admin login rejected")
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	session, err := signSession(auth, time.Now())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign JWT for login")
		WriteError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	s.logger.Info().Time("expires_at", session.ExpiresAt).Msg("Admin logged in")
	WriteJSON(w, http.StatusOK, session)
}

// signSession issues an HS256 admin token.
func signSession(auth *common.AuthConfig, now time.Time) (*models.Session, error) {
	expiresAt := now.Add(auth.GetTokenExpiry())
	claims := jwt.MapClaims{
		"jti":  uuid.New().String(),
		"sub":  adminSubject,
		"role": models.RoleAdmin,
		"iss":  "carfeed-server",
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(auth.JWTSecret))
	if err != nil {
		return nil, err
	}
	return &models.Session{Token: token, ExpiresAt: time.Unix(expiresAt.Unix(), 0).UTC()}, nil
}

// requireAdmin writes 401 for anonymous callers and 403 for non-admin
// claims. It returns true when the request may proceed.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims := common.AdminClaimsFromContext(r.Context())
	if claims == nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return false
	}
	if !claims.IsAdmin() {
		WriteError(w, http.StatusForbidden, "admin role required")
		return false
	}
	return true
}
