package reconcile

import (
	"context"

	"datrix-bot/internal/storage"
	"datrix-bot/internal/stories/plans"
	"datrix-bot/internal/stories/subs"
)

type subscriptionStorage interface {
	GetPhoneEntry(ctx context.Context, phone string) (*storage.PhoneEntry, error)
	GetSubscription(ctx context.Context, criteria subs.GetCriteria) (*subs.Subscription, error)
	UpsertSubscription(ctx context.Context, subscription subs.Subscription) (*subs.Subscription, error)
}

type planCatalog interface {
	ByAmount(amountKES int64) (*plans.Plan, bool)
}

type grantIssuer interface {
	Grant(ctx context.Context, chatID int64) (string, error)
}

type messenger interface {
	SendMessage(chatID int64, text string) error
}
