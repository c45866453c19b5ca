package service

import (
	"time"

	"assettrack/internal/domain/entity"
)

// TokenStore holds the single auth token of the dashboard.
type TokenStore interface {
	// Load returns the current session, or nil when logged out.
	Load() (*entity.Session, error)

	// Save replaces the session; it is persisted only when RememberMe is set.
	Save(session *entity.Session) error

	// Clear removes the session from every place it was kept.
	Clear() error
}

// TokenInspector extracts the expiry of a bearer token without verifying its
// signature. Opaque tokens have no expiry (nil, nil).
type TokenInspector interface {
	ExpiresAt(token string) (*time.Time, error)
}
