package cmds

import (
	"context"
	"fmt"
	"strings"

	"datrix-bot/internal/stories/subs"
	"datrix-bot/internal/telegram/messages"
)

type subscriptionRemover interface {
	Find(ctx context.Context, target string) (*subs.Subscription, error)
	Remove(ctx context.Context, userID int64) (bool, error)
}

type memberKicker interface {
	KickMember(channelID, userID int64) error
}

type RemoveCommand struct {
	telegram  messenger
	subs      subscriptionRemover
	kicker    memberKicker
	channelID int64
}

func NewRemoveCommand(telegram messenger, subs subscriptionRemover, kicker memberKicker, channelID int64) *RemoveCommand {
	return &RemoveCommand{
		telegram:  telegram,
		subs:      subs,
		kicker:    kicker,
		channelID: channelID,
	}
}

// Execute removes a subscriber by id or @username: the row is deleted and
// the user is kicked from the channel immediately, without waiting for the
// nightly sweep.
func (c *RemoveCommand) Execute(ctx context.Context, chatID int64, args string) error {
	target := strings.TrimSpace(args)
	if target == "" {
		return c.telegram.SendMessage(chatID, messages.RemoveUsage)
	}

	subscription, err := c.subs.Find(ctx, target)
	if err != nil {
		_ = c.telegram.SendMessage(chatID, "Lookup failed.")
		return fmt.Errorf("find subscription: %w", err)
	}
	if subscription == nil {
		return c.telegram.SendMessage(chatID, messages.SubscriberNotFound)
	}

	removed, err := c.subs.Remove(ctx, subscription.UserID)
	if err != nil {
		_ = c.telegram.SendMessage(chatID, "Removal failed.")
		return fmt.Errorf("remove subscription: %w", err)
	}
	if !removed {
		return c.telegram.SendMessage(chatID, messages.SubscriberNotFound)
	}

	if err := c.kicker.KickMember(c.channelID, subscription.UserID); err != nil {
		_ = c.telegram.SendMessage(chatID, "Row removed, but the kick failed. Check manually.")
		return fmt.Errorf("kick member: %w", err)
	}

	return c.telegram.SendMessage(chatID, messages.Removed(subscription.UserID))
}
