package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/parishkit/parishkit/api"
	"github.com/parishkit/parishkit/core/apiclient"
	"github.com/parishkit/parishkit/core/config"
	"github.com/parishkit/parishkit/core/logger"
	"github.com/parishkit/parishkit/core/session"
	"github.com/parishkit/parishkit/pkg/broadcast"
)

// appConfig is loaded from the environment (and .env when present).
type appConfig struct {
	APIBaseURL  string `env:"PARISH_API_URL" envDefault:"http://localhost:8080/api"`
	SessionFile string `env:"PARISH_SESSION_FILE"`
	RedisURL    string `env:"PARISH_REDIS_URL"`
	Debug       bool   `env:"PARISH_DEBUG"`
}

// app wires the session store, manager, and API services for one invocation.
type app struct {
	cfg       appConfig
	log       *slog.Logger
	store     *session.FileStore
	manager   *session.Manager
	client    *apiclient.Client
	auth      *api.AuthService
	members   *api.MembersService
	donations *api.DonationsService
	worship   *api.WorshipService
}

func newApp(ctx context.Context) (*app, error) {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.Discard()
	if cfg.Debug {
		log = logger.New(logger.WithDevelopment("parishctl"), logger.WithOutput(os.Stderr))
	}

	path := cfg.SessionFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".parishkit", "session.json")
	}

	store, err := session.NewFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	managerOpts := []session.Option{session.WithLogger(log)}
	if cfg.RedisURL != "" {
		redisClient, err := broadcast.ConnectRedis(ctx, broadcast.RedisConfig{
			ConnectionURL:  cfg.RedisURL,
			RetryAttempts:  3,
			RetryInterval:  time.Second,
			ConnectTimeout: 10 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		managerOpts = append(managerOpts,
			session.WithBroadcaster(broadcast.NewRedisBroadcaster[session.LogoutEvent](redisClient, "parishkit:logout", 16)))
	}
	manager := session.NewManager(store, managerOpts...)

	client, err := apiclient.New(cfg.APIBaseURL, store,
		apiclient.WithLogger(log),
		apiclient.WithInterceptors(
			apiclient.UnauthorizedInterceptor(manager,
				apiclient.WithWatchedBases(cfg.APIBaseURL),
				apiclient.WithInterceptorLogger(log),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &app{
		cfg:       cfg,
		log:       log,
		store:     store,
		manager:   manager,
		client:    client,
		auth:      api.NewAuthService(client, manager, log),
		members:   api.NewMembersService(client),
		donations: api.NewDonationsService(client),
		worship:   api.NewWorshipService(client),
	}, nil
}
