package entity

import "time"

// Session is the auth state of the dashboard: one bearer token.
type Session struct {
	Token      string     `json:"-" yaml:"token"`
	RememberMe bool       `json:"rememberMe" yaml:"rememberMe"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
}

// Expired reports whether the token carries an expiry that has passed.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
