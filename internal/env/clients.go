package environment

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"datrix-bot/internal/config"
	"datrix-bot/internal/infra/daraja"
	"datrix-bot/internal/infra/sqlite3"
	"datrix-bot/internal/infra/telegram"
)

type Clients struct {
	SQLiteDB    *sqlite3.DB
	TelegramBot *telegram.Client
	Daraja      *daraja.Client
}

func newClients(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Clients, error) {
	sqliteDB, err := provideSQLiteDB(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "provide sqlite db")
	}

	telegramBot, err := telegram.NewClient(cfg.Telegram.BotToken, logger)
	if err != nil {
		return nil, errors.Wrap(err, "provide telegram bot")
	}

	darajaClient := daraja.NewClient(cfg.Daraja, logger)

	return &Clients{
		SQLiteDB:    sqliteDB,
		TelegramBot: telegramBot,
		Daraja:      darajaClient,
	}, nil
}

func provideSQLiteDB(ctx context.Context, cfg config.Config) (*sqlite3.DB, error) {
	maxLifetime, err := time.ParseDuration(cfg.DB.MaxLifetime)
	if err != nil {
		return nil, errors.Wrapf(err, "parse max lifetime %q", cfg.DB.MaxLifetime)
	}

	db, err := sqlite3.New(ctx,
		sqlite3.WithDSN(cfg.DB.Path),
		sqlite3.WithMaxOpenConns(cfg.DB.MaxOpenConns),
		sqlite3.WithMaxIdleConns(cfg.DB.MaxIdleConns),
		sqlite3.WithConnMaxLifetime(maxLifetime),
	)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}

	return db, nil
}
