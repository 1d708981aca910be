package environment

import (
	"context"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"

	"datrix-bot/internal/config"
)

type closer func()

type Env struct {
	Config   *config.Config
	Logger   *slog.Logger
	Servers  *Servers
	Clients  *Clients
	Services *Services

	Closers []closer
}

func Setup(ctx context.Context) (*Env, error) {
	// A missing .env file is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	var cfg config.Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, errors.Wrap(err, "env processing")
	}

	logger := initLogger(cfg)

	clients, err := newClients(ctx, cfg, logger)
	if err != nil {
		return nil, errors.Wrap(err, "newClients")
	}

	services, err := newServices(clients, &cfg, logger)
	if err != nil {
		return nil, errors.Wrap(err, "newServices")
	}

	servers := newServers(cfg, clients, services)

	return &Env{
		Config:   &cfg,
		Logger:   logger,
		Servers:  servers,
		Clients:  clients,
		Services: services,
		Closers: []closer{
			func() { _ = clients.SQLiteDB.Close() },
		},
	}, nil
}
