package apiclient

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/parishkit/parishkit/core/logger"
	"github.com/parishkit/parishkit/core/session"
	"github.com/parishkit/parishkit/pkg/broadcast"
)

// Interceptor wraps an http.RoundTripper, observing or transforming every
// request and response that flows through the shared client.
type Interceptor func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Chain applies interceptors to base so the first interceptor observes the
// request first and the response last.
func Chain(base http.RoundTripper, interceptors ...Interceptor) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(interceptors) - 1; i >= 0; i-- {
		base = interceptors[i](base)
	}
	return base
}

// AuthError is broadcast at the moment an authorization failure is detected,
// carrying a user-facing message for any mounted notice UI. It is the only
// cross-component signaling channel of the authentication core, deliberately
// decoupled so the interceptor needs no direct reference to UI.
type AuthError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Path    string `json:"path"`
}

// SessionExpiredMessage is the user-facing notice broadcast on a 401.
const SessionExpiredMessage = "Your session has expired. Redirecting to login..."

// DefaultTeardownDelay is how long teardown is postponed after a 401 so a
// notice can render before navigation. Once scheduled it is not cancellable.
const DefaultTeardownDelay = 1500 * time.Millisecond

type unauthorizedConfig struct {
	bases  []*url.URL
	delay  time.Duration
	events broadcast.Broadcaster[AuthError]
	log    *slog.Logger
}

// UnauthorizedOption configures the unauthorized-response interceptor.
type UnauthorizedOption func(*unauthorizedConfig)

// WithWatchedBases sets the explicit allow-list of backend base URLs whose
// 401 responses count as session events. Responses from other hosts are
// ignored, so an unrelated third-party 401 can never trigger logout.
// Unparseable entries are skipped.
func WithWatchedBases(bases ...string) UnauthorizedOption {
	return func(c *unauthorizedConfig) {
		for _, base := range bases {
			u, err := url.Parse(base)
			if err != nil || u.Host == "" {
				continue
			}
			c.bases = append(c.bases, u)
		}
	}
}

// WithTeardownDelay overrides the delay between detecting a 401 and tearing
// the session down.
func WithTeardownDelay(delay time.Duration) UnauthorizedOption {
	return func(c *unauthorizedConfig) {
		if delay >= 0 {
			c.delay = delay
		}
	}
}

// WithAuthEvents sets the broadcaster used to signal authorization failures
// to listening UI.
func WithAuthEvents(events broadcast.Broadcaster[AuthError]) UnauthorizedOption {
	return func(c *unauthorizedConfig) {
		c.events = events
	}
}

// WithInterceptorLogger sets the structured logger. Default discards output.
func WithInterceptorLogger(log *slog.Logger) UnauthorizedOption {
	return func(c *unauthorizedConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// UnauthorizedInterceptor observes every response flowing through the chain
// and reacts to authorization failures from watched backend bases: it
// broadcasts an AuthError for listening UI and schedules session teardown
// after a short delay so the notice can render first.
//
// The first observed failure wins. While a teardown is pending, and once the
// session is absent, further 401s are absorbed without rescheduling, so N
// concurrent failing requests produce one observable teardown.
func UnauthorizedInterceptor(manager *session.Manager, opts ...UnauthorizedOption) Interceptor {
	cfg := &unauthorizedConfig{
		delay: DefaultTeardownDelay,
		log:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var pending atomic.Bool

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}

			if !watched(cfg.bases, req.URL) {
				return resp, nil
			}

			// A logout is only meaningful while a session is present.
			ctx := req.Context()
			if !manager.IsPresent(ctx) {
				return resp, nil
			}

			if !pending.CompareAndSwap(false, true) {
				return resp, nil
			}

			cfg.log.WarnContext(ctx, "authorization failure detected",
				logger.Component("apiclient"),
				logger.StatusCode(resp.StatusCode),
				logger.Path(req.URL.Path),
			)

			if cfg.events != nil {
				_ = cfg.events.Broadcast(ctx, broadcast.Message[AuthError]{
					Data: AuthError{
						Message: SessionExpiredMessage,
						Status:  resp.StatusCode,
						Path:    req.URL.Path,
					},
				})
			}

			// Detached from the request context: the teardown must survive
			// the originating request's cancellation.
			time.AfterFunc(cfg.delay, func() {
				defer pending.Store(false)
				if err := manager.Logout(context.Background()); err != nil {
					cfg.log.Error("failed to tear down session",
						logger.Component("apiclient"),
						logger.Error(err),
					)
				}
			})

			return resp, nil
		})
	}
}

// watched reports whether target falls under one of the allow-listed bases:
// same scheme and host, path within the base path.
func watched(bases []*url.URL, target *url.URL) bool {
	for _, base := range bases {
		if base.Scheme != "" && base.Scheme != target.Scheme {
			continue
		}
		if base.Host != target.Host {
			continue
		}
		if strings.HasPrefix(target.Path, strings.TrimSuffix(base.Path, "/")) {
			return true
		}
	}
	return false
}
