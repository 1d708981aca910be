package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	environment "datrix-bot/internal/env"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env, err := environment.Setup(ctx)
	if err != nil {
		log.Fatalf("Failed to setup environment: %v", err)
	}

	logger := env.Logger
	logger.Info("starting datrix-bot")

	go func() {
		logger.Info("starting observability server",
			slog.String("addr", env.Servers.HTTP.Observability.Addr))
		if err := env.Servers.HTTP.Observability.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("observability server error", slog.Any("error", err))
		}
	}()

	go func() {
		logger.Info("starting api server",
			slog.String("addr", env.Servers.HTTP.API.Addr))
		if err := env.Servers.HTTP.API.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server error", slog.Any("error", err))
		}
	}()

	if err := startTelegramBot(ctx, env); err != nil {
		logger.Error("failed to start telegram bot", slog.Any("error", err))
		return
	}

	if err := env.Services.WorkerManager.Start(); err != nil {
		logger.Error("failed to start workers", slog.Any("error", err))
		return
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("bot started, press Ctrl+C to stop")
	<-quit

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), env.Config.ShutdownDuration)
	defer shutdownCancel()

	env.Services.WorkerManager.Stop()

	if err := env.Servers.HTTP.API.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown error", slog.Any("error", err))
	}
	if err := env.Servers.HTTP.Observability.Shutdown(shutdownCtx); err != nil {
		logger.Error("observability server shutdown error", slog.Any("error", err))
	}

	for _, closer := range env.Closers {
		closer()
	}

	logger.Info("stopped")
}

func startTelegramBot(ctx context.Context, env *environment.Env) error {
	logger := env.Logger

	if err := env.Clients.TelegramBot.Start(ctx); err != nil {
		return err
	}

	// A failure here only leaves the command menu empty; keep going.
	if err := env.Services.TelegramRouter.SetupBotCommands(); err != nil {
		logger.Error("failed to set up bot commands", slog.Any("error", err))
	}

	updates := env.Clients.TelegramBot.GetUpdates()

	go func() {
		for {
			select {
			case <-ctx.Done():
				env.Clients.TelegramBot.Stop()
				return
			case update := <-updates:
				if err := env.Services.TelegramRouter.Route(ctx, &update); err != nil {
					logger.Error("update handling failed", slog.Any("error", err))
				}
			}
		}
	}()

	return nil
}
