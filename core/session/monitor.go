package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/parishkit/parishkit/core/logger"
)

// Monitor periodically re-checks that the session token is still present in
// storage and forces a teardown when it has disappeared out-of-band, e.g.
// cleared by another process sharing the same store. When the manager has a
// broadcaster configured, the monitor also reacts to logout events from other
// execution contexts, so invalidation is event-driven where possible and
// polling elsewhere.
type Monitor struct {
	manager  *Manager
	interval time.Duration
	log      *slog.Logger
	resume   chan struct{}

	// Presence observed at construction. A token that disappears between
	// NewMonitor and the first check still counts as an out-of-band clear.
	hadSession bool
}

// NewMonitor creates a liveness monitor for the given manager. Presence is
// sampled here, synchronously, so Run's first check compares against the
// state the caller saw when wiring the monitor up.
func NewMonitor(manager *Manager, opts ...MonitorOption) *Monitor {
	cfg := defaultMonitorConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Monitor{
		manager:    manager,
		interval:   cfg.interval,
		log:        cfg.log,
		resume:     make(chan struct{}, 1),
		hadSession: manager.IsPresent(context.Background()),
	}
}

// Resume triggers an immediate liveness check, the analogue of re-focusing a
// suspended client. Never blocks; overlapping calls collapse into one check.
func (m *Monitor) Resume() {
	select {
	case m.resume <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled, checking liveness on every interval tick
// and on every Resume call.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var logoutEvents <-chan struct{}
	if m.manager.broadcaster != nil {
		events := make(chan struct{}, 1)
		sub := m.manager.broadcaster.Subscribe(ctx)
		defer sub.Close()

		go func() {
			defer close(events)
			for range sub.Receive(ctx) {
				select {
				case events <- struct{}{}:
				default:
				}
			}
		}()
		logoutEvents = events
	}

	hadSession := m.hadSession

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			hadSession = m.check(ctx, hadSession)
		case <-m.resume:
			hadSession = m.check(ctx, hadSession)
		case _, ok := <-logoutEvents:
			if !ok {
				logoutEvents = nil
				continue
			}
			if m.manager.IsPresent(ctx) {
				m.log.InfoContext(ctx, "logout observed in another context",
					logger.Component("session"),
					logger.Event("remote_logout"),
				)
				if err := m.manager.LogoutQuiet(ctx, "remote logout"); err != nil {
					m.log.ErrorContext(ctx, "failed to tear down session",
						logger.Component("session"),
						logger.Error(err),
					)
				}
			}
			hadSession = false
		}
	}
}

// check forces a teardown when a previously present token has disappeared
// from storage. Returns the current presence for the next round.
func (m *Monitor) check(ctx context.Context, hadSession bool) bool {
	present := m.manager.IsPresent(ctx)
	if hadSession && !present {
		m.log.InfoContext(ctx, "session token disappeared from storage",
			logger.Component("session"),
			logger.Event("liveness_check"),
		)
		if err := m.manager.LogoutQuiet(ctx, "token missing"); err != nil {
			m.log.ErrorContext(ctx, "failed to tear down session",
				logger.Component("session"),
				logger.Error(err),
			)
		}
	}
	return present
}
