package subs

import "context"

type subscriptionStorage interface {
	GetSubscription(ctx context.Context, criteria GetCriteria) (*Subscription, error)
	ListSubscriptions(ctx context.Context, criteria ListCriteria) ([]*Subscription, error)
	DeleteSubscriptions(ctx context.Context, criteria DeleteCriteria) (int64, error)
}
