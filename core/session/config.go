package session

import (
	"log/slog"
	"time"

	"github.com/parishkit/parishkit/core/logger"
	"github.com/parishkit/parishkit/pkg/broadcast"
)

// DefaultLoginPath is the login entry point used when none is configured.
const DefaultLoginPath = "/login"

type managerConfig struct {
	navigator   Navigator
	broadcaster broadcast.Broadcaster[LogoutEvent]
	loginPath   string
	log         *slog.Logger
}

func defaultConfig() *managerConfig {
	return &managerConfig{
		navigator: NopNavigator{},
		loginPath: DefaultLoginPath,
		log:       logger.Discard(),
	}
}

// Option is a functional option for configuring the session manager.
type Option func(*managerConfig)

// WithNavigator sets the navigation hook invoked on teardown.
func WithNavigator(nav Navigator) Option {
	return func(c *managerConfig) {
		if nav != nil {
			c.navigator = nav
		}
	}
}

// WithBroadcaster enables logout propagation to other execution contexts.
func WithBroadcaster(b broadcast.Broadcaster[LogoutEvent]) Option {
	return func(c *managerConfig) {
		c.broadcaster = b
	}
}

// WithLoginPath overrides the login entry point path.
func WithLoginPath(path string) Option {
	return func(c *managerConfig) {
		if path != "" {
			c.loginPath = path
		}
	}
}

// WithLogger sets the structured logger. Default discards output.
func WithLogger(log *slog.Logger) Option {
	return func(c *managerConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// MonitorOption configures the liveness monitor.
type MonitorOption func(*monitorConfig)

type monitorConfig struct {
	interval time.Duration
	log      *slog.Logger
}

func defaultMonitorConfig() *monitorConfig {
	return &monitorConfig{
		interval: 5 * time.Second,
		log:      logger.Discard(),
	}
}

// WithInterval sets the polling interval of the liveness check.
func WithInterval(interval time.Duration) MonitorOption {
	return func(c *monitorConfig) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// WithMonitorLogger sets the structured logger. Default discards output.
func WithMonitorLogger(log *slog.Logger) MonitorOption {
	return func(c *monitorConfig) {
		if log != nil {
			c.log = log
		}
	}
}
