package cmds

import (
	"context"
	"fmt"

	"datrix-bot/internal/telegram/messages"
)

type sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// CheckExpiryCommand runs the expiry sweep on demand instead of waiting
// for the nightly schedule.
type CheckExpiryCommand struct {
	telegram messenger
	sweeper  sweeper
}

func NewCheckExpiryCommand(telegram messenger, sweeper sweeper) *CheckExpiryCommand {
	return &CheckExpiryCommand{telegram: telegram, sweeper: sweeper}
}

func (c *CheckExpiryCommand) Execute(ctx context.Context, chatID int64) error {
	removed, err := c.sweeper.Sweep(ctx)
	if err != nil {
		_ = c.telegram.SendMessage(chatID, "Expiry check failed.")
		return fmt.Errorf("sweep: %w", err)
	}

	return c.telegram.SendMessage(chatID, messages.SweepReport(removed))
}
