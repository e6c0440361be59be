package guard

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/parishkit/parishkit/core/logger"
	"github.com/parishkit/parishkit/core/session"
	"github.com/parishkit/parishkit/core/token"
)

// State is the guard's resolution state for this application load.
type State int

const (
	// StateChecking means validity has not yet been determined.
	StateChecking State = iota
	// StateAuthorized means the last check found a valid session.
	StateAuthorized
	// StateUnauthorized means the last check found no valid session.
	StateUnauthorized
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateAuthorized:
		return "authorized"
	case StateUnauthorized:
		return "unauthorized"
	default:
		return "checking"
	}
}

// Decision is the outcome of a navigation check.
type Decision struct {
	State State
	// RedirectTo carries the login entry point URL, including the originally
	// requested path as redirect target, when State is StateUnauthorized.
	RedirectTo string
}

// Guard prevents protected views from rendering before a validity check
// completes. The check runs at most once per Guard instance.
type Guard struct {
	validator *token.Validator
	manager   *session.Manager
	public    []string
	log       *slog.Logger

	once  sync.Once
	mu    sync.Mutex
	state State
}

// Option configures the guard.
type Option func(*Guard)

// WithPublicPaths registers path prefixes that bypass the guard entirely.
func WithPublicPaths(paths ...string) Option {
	return func(g *Guard) {
		g.public = append(g.public, paths...)
	}
}

// WithLogger sets the structured logger. Default discards output.
func WithLogger(log *slog.Logger) Option {
	return func(g *Guard) {
		if log != nil {
			g.log = log
		}
	}
}

// New creates a guard over the given validator. The manager supplies the
// login URL for redirects and tears down a session that turns out to be
// present but expired.
func New(validator *token.Validator, manager *session.Manager, opts ...Option) *Guard {
	g := &Guard{
		validator: validator,
		manager:   manager,
		state:     StateChecking,
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State returns the current resolution state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Check decides whether navigation to path may proceed. Public paths always
// authorize without touching the state machine. The first protected
// navigation resolves the state; later checks reuse it.
func (g *Guard) Check(ctx context.Context, path string) Decision {
	if g.isPublic(path) {
		return Decision{State: StateAuthorized}
	}

	g.once.Do(func() {
		state := StateUnauthorized
		if g.validator.IsValid(ctx) {
			state = StateAuthorized
		} else if g.manager.IsPresent(ctx) {
			// Present but expired is equivalent to absent, and stale
			// credentials must not linger in storage.
			if err := g.manager.LogoutQuiet(ctx, "expired token"); err != nil {
				g.log.ErrorContext(ctx, "failed to clear expired session",
					logger.Component("guard"),
					logger.Error(err),
				)
			}
		}

		g.mu.Lock()
		g.state = state
		g.mu.Unlock()

		g.log.DebugContext(ctx, "route guard resolved",
			logger.Component("guard"),
			logger.Path(path),
			logger.Result(state.String()),
		)
	})

	state := g.State()
	if state == StateUnauthorized {
		return Decision{State: state, RedirectTo: g.manager.LoginURL(path)}
	}
	return Decision{State: state}
}

func (g *Guard) isPublic(path string) bool {
	for _, prefix := range g.public {
		if prefix == "/" {
			if path == "/" {
				return true
			}
			continue
		}
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
