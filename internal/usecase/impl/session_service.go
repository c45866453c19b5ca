package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "assettrack/internal/delivery/context"
	"assettrack/internal/domain/entity"
	domainerrors "assettrack/internal/domain/errors"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"
	"assettrack/internal/usecase"
)

// sessionService implements the SessionUsecase interface over the single token store.
type sessionService struct {
	tokens    service.TokenStore
	inspector service.TokenInspector
	logger    *slog.Logger
	now       func() time.Time
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(
	tokens service.TokenStore,
	inspector service.TokenInspector,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		tokens:    tokens,
		inspector: inspector,
		logger:    logger,
		now:       time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login stores token. A remembered session survives restarts; an expired
// token is refused.
func (srv *sessionService) Login(ctx context.Context, token string, rememberMe bool) (*usecase.SessionStatus, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, domainerrors.ErrValidation.WithDetails("token is required")
	}

	expiresAt, err := srv.inspector.ExpiresAt(token)
	if err != nil {
		return nil, domainerrors.ErrValidation.WithDetails("token is malformed")
	}

	session := &entity.Session{Token: token, RememberMe: rememberMe, ExpiresAt: expiresAt}
	if session.Expired(srv.now()) {
		return nil, domainerrors.ErrSessionExpired
	}

	if err := srv.tokens.Save(session); err != nil {
		return nil, errors.Wrap(err, "failed to save session")
	}
	srv.log(ctx).Info("Session started", slog.Bool("remember_me", rememberMe))

	return srv.describe(session), nil
}

// Logout forgets the token everywhere it was kept.
func (srv *sessionService) Logout(ctx context.Context) error {
	if err := srv.tokens.Clear(); err != nil {
		return errors.Wrap(err, "failed to clear session")
	}
	srv.log(ctx).Info("Session cleared")

	return nil
}

// Status describes the current session.
func (srv *sessionService) Status(ctx context.Context) (*usecase.SessionStatus, error) {
	session, err := srv.tokens.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load session")
	}

	return srv.describe(session), nil
}

func (srv *sessionService) describe(session *entity.Session) *usecase.SessionStatus {
	if session == nil || session.Token == "" {
		return &usecase.SessionStatus{}
	}

	return &usecase.SessionStatus{
		Authenticated: !session.Expired(srv.now()),
		RememberMe:    session.RememberMe,
		ExpiresAt:     session.ExpiresAt,
		Expired:       session.Expired(srv.now()),
	}
}
