package subs

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Service backs the admin commands: listing subscribers, looking one up
// and removing one by hand.
type Service struct {
	storage subscriptionStorage
	logger  *slog.Logger
}

func New(storage subscriptionStorage, logger *slog.Logger) *Service {
	return &Service{storage: storage, logger: logger}
}

// List returns every subscription, most recent expiry first.
func (s *Service) List(ctx context.Context) ([]*Subscription, error) {
	subscriptions, err := s.storage.ListSubscriptions(ctx, ListCriteria{})
	if err != nil {
		return nil, errors.Wrap(err, "list subscriptions")
	}
	return subscriptions, nil
}

// Find resolves a subscription by user id or @username.
func (s *Service) Find(ctx context.Context, target string) (*Subscription, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, errors.New("empty lookup target")
	}

	criteria := GetCriteria{}
	if userID, err := strconv.ParseInt(target, 10, 64); err == nil {
		criteria.UserIDs = []int64{userID}
	} else {
		criteria.Usernames = []string{strings.TrimPrefix(target, "@")}
	}

	subscription, err := s.storage.GetSubscription(ctx, criteria)
	if err != nil {
		return nil, errors.Wrap(err, "get subscription")
	}
	return subscription, nil
}

// Remove deletes the user's subscription row. Returns false when there was
// nothing to delete. Kicking the user from the channel is the caller's
// responsibility.
func (s *Service) Remove(ctx context.Context, userID int64) (bool, error) {
	affected, err := s.storage.DeleteSubscriptions(ctx, DeleteCriteria{UserIDs: []int64{userID}})
	if err != nil {
		return false, errors.Wrap(err, "delete subscription")
	}

	if affected > 0 {
		s.logger.Info("subscription removed by admin", slog.Int64("user_id", userID))
	}
	return affected > 0, nil
}
