// Package cmds implements the admin commands. Each command is a small
// struct around the services it needs, wired once at startup.
package cmds

import (
	"context"
	"fmt"
	"strings"

	"datrix-bot/internal/stories/subs"
	"datrix-bot/internal/telegram/messages"
)

type messenger interface {
	SendMessage(chatID int64, text string) error
}

type subscriptionLister interface {
	List(ctx context.Context) ([]*subs.Subscription, error)
}

type MembersCommand struct {
	telegram messenger
	subs     subscriptionLister
}

func NewMembersCommand(telegram messenger, subs subscriptionLister) *MembersCommand {
	return &MembersCommand{telegram: telegram, subs: subs}
}

func (c *MembersCommand) Execute(ctx context.Context, chatID int64) error {
	subscriptions, err := c.subs.List(ctx)
	if err != nil {
		_ = c.telegram.SendMessage(chatID, "Failed to load subscribers.")
		return fmt.Errorf("list subscriptions: %w", err)
	}

	if len(subscriptions) == 0 {
		return c.telegram.SendMessage(chatID, messages.NoSubscribers)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Subscribers (%d):\n", len(subscriptions))
	for _, s := range subscriptions {
		name := "-"
		if s.Username != nil {
			name = "@" + *s.Username
		}
		fmt.Fprintf(&b, "%d %s %s expires %s\n",
			s.UserID, name, s.Phone, s.ExpiresAt.Format("2006-01-02 15:04"))
	}

	return c.telegram.SendMessage(chatID, b.String())
}
