package session

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/parishkit/parishkit/core/logger"
	"github.com/parishkit/parishkit/pkg/broadcast"
)

// LogoutEvent is broadcast when a session is torn down, so other execution
// contexts holding the same credential can invalidate immediately instead of
// waiting for their next poll.
type LogoutEvent struct {
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// Manager owns the session lifecycle: Login is the only writer of a new
// session, Logout the single teardown path back to an unauthenticated
// context.
type Manager struct {
	store       Store
	navigator   Navigator
	broadcaster broadcast.Broadcaster[LogoutEvent]
	loginPath   string
	log         *slog.Logger
}

// NewManager creates a session manager over the given store.
func NewManager(store Store, opts ...Option) *Manager {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Manager{
		store:       store,
		navigator:   cfg.navigator,
		broadcaster: cfg.broadcaster,
		loginPath:   cfg.loginPath,
		log:         cfg.log,
	}
}

// Login persists the credential pair from a successful login response.
// Token and user summary are written atomically; a failed write leaves the
// previous state untouched.
func (m *Manager) Login(ctx context.Context, token string, user *User) error {
	if token == "" {
		return ErrEmptyToken
	}

	if err := m.store.Write(ctx, token, user); err != nil {
		return errors.Join(ErrStoreFailed, err)
	}

	m.log.InfoContext(ctx, "session established",
		logger.Component("session"),
		logger.Event("login"),
		logger.ID("user_id", userID(user)),
	)
	return nil
}

// Current returns the present session. Returns ErrNoSession when logged out.
func (m *Manager) Current(ctx context.Context) (Session, error) {
	token, err := m.store.Read(ctx)
	if err != nil {
		return Session{}, errors.Join(ErrStoreFailed, err)
	}
	if token == "" {
		return Session{}, ErrNoSession
	}

	user, err := m.store.ReadUser(ctx)
	if err != nil {
		return Session{}, errors.Join(ErrStoreFailed, err)
	}

	return Session{Token: token, User: user}, nil
}

// IsPresent reports whether a token currently exists in storage, regardless
// of validity. Read errors count as absent.
func (m *Manager) IsPresent(ctx context.Context) bool {
	token, err := m.store.Read(ctx)
	return err == nil && token != ""
}

// Logout clears the session and navigates to the login entry point, carrying
// the path the user was on so login can return there. Idempotent: calling it
// again while logged out only repeats the navigation.
func (m *Manager) Logout(ctx context.Context) error {
	return m.teardown(ctx, "logout", true)
}

// LogoutQuiet tears the session down without publishing a logout broadcast.
// Used when reacting to a logout event that originated elsewhere, so events
// do not bounce between contexts.
func (m *Manager) LogoutQuiet(ctx context.Context, reason string) error {
	return m.teardown(ctx, reason, false)
}

func (m *Manager) teardown(ctx context.Context, reason string, publish bool) error {
	wasPresent := m.IsPresent(ctx)

	if err := m.store.Clear(ctx); err != nil {
		return errors.Join(ErrStoreFailed, err)
	}

	if publish && wasPresent && m.broadcaster != nil {
		// Best effort: local teardown must not depend on the broadcast medium.
		if err := m.broadcaster.Broadcast(ctx, broadcast.Message[LogoutEvent]{
			Data: LogoutEvent{Reason: reason, At: time.Now()},
		}); err != nil {
			m.log.WarnContext(ctx, "failed to broadcast logout",
				logger.Component("session"),
				logger.Error(err),
			)
		}
	}

	m.navigator.Navigate(m.LoginURL(m.navigator.Location()))

	if wasPresent {
		m.log.InfoContext(ctx, "session cleared",
			logger.Component("session"),
			logger.Event("logout"),
			logger.ID("reason", reason),
		)
	}
	return nil
}

// LoginURL builds the login entry point URL, attaching from as the redirect
// target when it names a different path.
func (m *Manager) LoginURL(from string) string {
	if from == "" || from == m.loginPath {
		return m.loginPath
	}
	return m.loginPath + "?" + url.Values{"redirect": {from}}.Encode()
}

func userID(user *User) string {
	if user == nil {
		return ""
	}
	return user.ID
}
