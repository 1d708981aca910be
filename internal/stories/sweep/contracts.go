package sweep

import (
	"context"

	"datrix-bot/internal/stories/subs"
)

type subscriptionStorage interface {
	ListSubscriptions(ctx context.Context, criteria subs.ListCriteria) ([]*subs.Subscription, error)
	DeleteSubscriptions(ctx context.Context, criteria subs.DeleteCriteria) (int64, error)
}

type channelAdmin interface {
	MemberStatus(channelID, userID int64) (string, error)
	KickMember(channelID, userID int64) error
	SendMessage(chatID int64, text string) error
}
