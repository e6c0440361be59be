package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/parishkit/parishkit/core/apiclient"
	"github.com/parishkit/parishkit/core/logger"
	"github.com/parishkit/parishkit/core/session"
)

// Credentials is the login request payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the backend's answer to a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

// AuthService handles login and logout against the backend, keeping the
// local session in step.
type AuthService struct {
	client  *apiclient.Client
	manager *session.Manager
	log     *slog.Logger
}

// NewAuthService creates the auth service.
func NewAuthService(client *apiclient.Client, manager *session.Manager, log *slog.Logger) *AuthService {
	if log == nil {
		log = logger.Discard()
	}
	return &AuthService{client: client, manager: manager, log: log}
}

// Login authenticates against the backend and, on success, persists the
// returned token and user summary atomically.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var resp LoginResponse
	if err := s.client.DoJSON(ctx, http.MethodPost, "/auth/login", creds, &resp, apiclient.WithoutAuth()); err != nil {
		return nil, err
	}

	if err := s.manager.Login(ctx, resp.Token, &resp.User); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout asks the backend to revoke the credential, then tears the local
// session down. The revoke call is best effort: a token the backend cannot
// revoke anymore must never keep the user logged in locally.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.client.DoJSON(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		s.log.WarnContext(ctx, "server-side revoke failed",
			logger.Component("api"),
			logger.Event("logout"),
			logger.Error(err),
		)
	}
	return s.manager.Logout(ctx)
}

// Me fetches the authenticated profile from the backend, bypassing the
// cached summary.
func (s *AuthService) Me(ctx context.Context) (*session.User, error) {
	var user session.User
	if err := s.client.DoJSON(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
