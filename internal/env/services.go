package environment

import (
	"log/slog"

	"github.com/pkg/errors"

	"datrix-bot/internal/config"
	"datrix-bot/internal/storage"
	"datrix-bot/internal/stories/grants"
	"datrix-bot/internal/stories/payment"
	"datrix-bot/internal/stories/plans"
	"datrix-bot/internal/stories/reconcile"
	"datrix-bot/internal/stories/subs"
	"datrix-bot/internal/stories/sweep"
	"datrix-bot/internal/telegram"
	"datrix-bot/internal/telegram/cmds"
	"datrix-bot/internal/telegram/flows/subscribe"
	"datrix-bot/internal/telegram/messages"
	"datrix-bot/internal/telegram/pending"
	"datrix-bot/internal/webhook"
	"datrix-bot/internal/workers"
	"datrix-bot/internal/workers/expiry"
)

type Services struct {
	TelegramRouter *telegram.Router
	WebhookHandler *webhook.Handler
	WorkerManager  *workers.Manager
}

func newServices(clients *Clients, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	storageImpl := storage.New(clients.SQLiteDB.DB)

	catalog, err := plans.NewCatalog()
	if err != nil {
		return nil, errors.Wrap(err, "load plan catalog")
	}

	adminChecker := telegram.NewAdminChecker(cfg.Telegram)

	paymentService := payment.New(clients.Daraja, logger)
	grantsService := grants.New(clients.TelegramBot, logger, cfg.Telegram.ChannelID, cfg.Subscription.InviteTTL)
	reconcileService := reconcile.New(
		storageImpl,
		catalog,
		grantsService,
		clients.TelegramBot,
		logger,
		cfg.Subscription.DefaultValidity,
	)
	subsService := subs.New(storageImpl, logger)
	sweepService := sweep.New(storageImpl, clients.TelegramBot, logger, cfg.Telegram.ChannelID, cfg.Subscription.SweepRPS)

	pendingStore := pending.NewStore(cfg.Subscription.PendingWindow, func(userID, chatID int64) {
		if err := clients.TelegramBot.SendMessage(chatID, messages.RequestTimedOut); err != nil {
			logger.Error("send timeout notice failed",
				slog.Int64("user_id", userID),
				slog.String("error", err.Error()))
		}
	})

	subscribeFlow := subscribe.New(
		pendingStore,
		catalog,
		paymentService,
		storageImpl,
		clients.TelegramBot,
		logger,
	)

	router := telegram.NewRouter(
		clients.TelegramBot,
		adminChecker,
		logger,
		subscribeFlow,
		cmds.NewMembersCommand(clients.TelegramBot, subsService),
		cmds.NewRemoveCommand(clients.TelegramBot, subsService, clients.TelegramBot, cfg.Telegram.ChannelID),
		cmds.NewBroadcastCommand(clients.TelegramBot, subsService, logger, cfg.Subscription.BroadcastRPS),
		cmds.NewCheckExpiryCommand(clients.TelegramBot, sweepService),
		cmds.NewSimulateCommand(clients.TelegramBot, reconcileService),
	)

	expiryWorker, err := expiry.NewWorker(sweepService, logger, cfg.Subscription.SweepSpec, cfg.Subscription.SweepTimezone)
	if err != nil {
		return nil, errors.Wrap(err, "create expiry worker")
	}

	return &Services{
		TelegramRouter: router,
		WebhookHandler: webhook.NewHandler(reconcileService, logger),
		WorkerManager:  workers.NewManager(logger, expiryWorker),
	}, nil
}
