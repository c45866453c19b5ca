package auth

import (
	"strings"
	"time"

	"assettrack/internal/domain/service"
	"assettrack/internal/errors"

	"github.com/golang-jwt/jwt/v5"
)

// jwtInspector reads the exp claim of JWT bearer tokens. The backend is the
// one that verifies signatures; this only lets the client fail fast.
type jwtInspector struct {
	parser *jwt.Parser
}

// NewTokenInspector is the constructor for the JWT inspector.
func NewTokenInspector() service.TokenInspector {
	return &jwtInspector{parser: jwt.NewParser()}
}

// ExpiresAt returns the exp claim, nil for tokens that are not JWTs or carry no exp.
func (i *jwtInspector) ExpiresAt(token string) (*time.Time, error) {
	if strings.Count(token, ".") != 2 {
		return nil, nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(err, "parse token")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, errors.Wrap(err, "read exp claim")
	}
	if exp == nil {
		return nil, nil
	}
	t := exp.Time

	return &t, nil
}
