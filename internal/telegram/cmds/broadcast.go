package cmds

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"datrix-bot/internal/telegram/messages"
)

type BroadcastCommand struct {
	telegram messenger
	subs     subscriptionLister
	logger   *slog.Logger

	// Broadcasts hit every subscriber; pace them well below the bot-wide
	// Telegram limit so regular traffic keeps flowing.
	limiter *rate.Limiter
}

func NewBroadcastCommand(telegram messenger, subs subscriptionLister, logger *slog.Logger, rps float64) *BroadcastCommand {
	return &BroadcastCommand{
		telegram: telegram,
		subs:     subs,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (c *BroadcastCommand) Execute(ctx context.Context, chatID int64, args string) error {
	text := strings.TrimSpace(args)
	if text == "" {
		return c.telegram.SendMessage(chatID, messages.BroadcastUsage)
	}

	subscriptions, err := c.subs.List(ctx)
	if err != nil {
		_ = c.telegram.SendMessage(chatID, "Failed to load subscribers.")
		return fmt.Errorf("list subscriptions: %w", err)
	}
	if len(subscriptions) == 0 {
		return c.telegram.SendMessage(chatID, messages.NoSubscribers)
	}

	sent := 0
	for _, s := range subscriptions {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiting: %w", err)
		}
		if err := c.telegram.SendMessage(s.UserID, messages.Broadcast(text)); err != nil {
			// Blocked bots and deleted accounts are expected here.
			c.logger.Warn("broadcast delivery failed",
				slog.Int64("user_id", s.UserID),
				slog.String("error", err.Error()))
			continue
		}
		sent++
	}

	return c.telegram.SendMessage(chatID, messages.BroadcastDone(sent, len(subscriptions)))
}
