package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bobmcallan/carfeed/internal/clients/feedbackapi"
)

// Persisted session keys.
const (
	keyIsAdmin    = "isAdmin"
	keyAdminToken = "admin_token"
	adminMarker   = "true"
)

// Persistence is durable client storage for the session.
// localstate.Store satisfies it.
type Persistence interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// LoginResult reports the outcome of a login attempt.
type LoginResult struct {
	OK     bool
	Reason string
}

// IsAdmin reports whether the dashboard is in admin mode.
func (c *Controller) IsAdmin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.IsAdmin
}

// Token returns the admin bearer token, empty outside admin mode.
func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// restoreSession re-enters admin mode from persisted state when the
// marker is set and the token has not expired.
func (c *Controller) restoreSession() {
	marker, err := c.persist.Get(keyIsAdmin)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to read persisted session")
		return
	}
	token, err := c.persist.Get(keyAdminToken)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to read persisted session token")
		return
	}

	if marker != adminMarker || token == "" {
		if marker != "" || token != "" {
			c.clearPersisted()
		}
		return
	}
	if tokenExpired(token, time.Now()) {
		c.logger.Info().Msg("Persisted admin session expired")
		c.clearPersisted()
		return
	}

	c.mu.Lock()
	c.state.IsAdmin = true
	c.token = token
	c.mu.Unlock()
	c.logger.Debug().Msg("Admin session restored")
}

// tokenExpired checks the exp claim without verifying the signature.
// Unparseable tokens count as expired.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// Login exchanges the admin password for a session token.
func (c *Controller) Login(ctx context.Context, password string) (LoginResult, error) {
	if strings.TrimSpace(password) == "" {
		c.show(MsgLoginFailed, MessageError)
		return LoginResult{Reason: "password is required"}, fmt.Errorf("login: %w", ErrAuth)
	}

	session, err := c.api.Login(ctx, password)
	if err != nil {
		var apiErr *feedbackapi.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			c.show(MsgLoginFailed, MessageError)
			return LoginResult{Reason: MsgLoginFailed}, fmt.Errorf("login: %w", ErrAuth)
		}
		c.logger.Error().Err(err).Msg("Login request failed")
		c.show(MsgSubmitFailed, MessageError)
		return LoginResult{Reason: err.Error()}, fmt.Errorf("login: %w", err)
	}

	if err := c.persist.Set(keyIsAdmin, adminMarker); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to persist admin marker")
	}
	if err := c.persist.Set(keyAdminToken, session.Token); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to persist admin token")
	}

	c.mu.Lock()
	c.state.IsAdmin = true
	c.token = session.Token
	c.mu.Unlock()

	c.logger.Info().Time("expires_at", session.ExpiresAt).Msg("Admin logged in")
	c.bus.Publish(SessionChanged)
	return LoginResult{OK: true}, nil
}

// Logout leaves admin mode and forgets the persisted session.
func (c *Controller) Logout() {
	c.endSession(true)
	c.logger.Info().Msg("Admin logged out")
	c.bus.Publish(SessionChanged)
}

// expireSession drops a session the server no longer accepts. An open
// draft survives so it can be committed after logging in again.
func (c *Controller) expireSession() {
	if !c.endSession(false) {
		return
	}
	c.show(MsgSessionExpired, MessageError)
	c.logger.Warn().Msg("Admin session rejected by server")
	c.bus.Publish(SessionChanged)
}

// endSession clears admin state, and the open edit when dropEdit is set.
// It reports whether the controller was in admin mode.
func (c *Controller) endSession(dropEdit bool) bool {
	c.mu.Lock()
	wasAdmin := c.state.IsAdmin
	c.state.IsAdmin = false
	c.token = ""
	if dropEdit {
		c.state.Edit = nil
	}
	c.mu.Unlock()

	c.clearPersisted()
	return wasAdmin
}

func (c *Controller) clearPersisted() {
	if err := c.persist.Delete(keyIsAdmin, keyAdminToken); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to clear persisted session")
	}
}
