package usecase

import (
	"context"
	"time"
)

// SessionStatus describes the stored session without exposing the token.
type SessionStatus struct {
	Authenticated bool       `json:"authenticated"`
	RememberMe    bool       `json:"rememberMe"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	Expired       bool       `json:"expired"`
}

// SessionUsecase defines the interface for session management operations.
type SessionUsecase interface {
	Login(ctx context.Context, token string, rememberMe bool) (*SessionStatus, error)
	Logout(ctx context.Context) error
	Status(ctx context.Context) (*SessionStatus, error)
}
