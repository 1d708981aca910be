package cmds

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"datrix-bot/internal/telegram/messages"
)

type paymentSimulator interface {
	Simulate(ctx context.Context, chatID, amountKES int64, username *string) error
}

// SimulateCommand settles a fake payment for the calling admin. Useful for
// verifying the grant path in sandbox without moving money.
type SimulateCommand struct {
	telegram   messenger
	reconciler paymentSimulator
}

func NewSimulateCommand(telegram messenger, reconciler paymentSimulator) *SimulateCommand {
	return &SimulateCommand{telegram: telegram, reconciler: reconciler}
}

func (c *SimulateCommand) Execute(ctx context.Context, chatID int64, args string, username *string) error {
	amount, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil || amount <= 0 {
		return c.telegram.SendMessage(chatID, messages.SimulateUsage)
	}

	if err := c.reconciler.Simulate(ctx, chatID, amount, username); err != nil {
		_ = c.telegram.SendMessage(chatID, "Simulation failed.")
		return fmt.Errorf("simulate payment: %w", err)
	}

	return nil
}
