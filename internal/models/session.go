package models

import "time"

// Session is an issued admin session token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Role constants carried in session token claims.
const (
	RoleAdmin = "admin"
)
