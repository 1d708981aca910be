// Package sweep removes subscribers whose paid period has ended: their
// rows are deleted and they are kicked from the channel.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"datrix-bot/internal/metrics"
	"datrix-bot/internal/stories/subs"
	"datrix-bot/internal/telegram/messages"
)

type Service struct {
	storage   subscriptionStorage
	telegram  channelAdmin
	logger    *slog.Logger
	channelID int64

	// limiter spaces out the per-user Telegram calls so a large sweep
	// does not trip the bot-wide rate limit.
	limiter *rate.Limiter
	now     func() time.Time
}

func New(storage subscriptionStorage, telegram channelAdmin, logger *slog.Logger, channelID int64, rps float64) *Service {
	return &Service{
		storage:   storage,
		telegram:  telegram,
		logger:    logger,
		channelID: channelID,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		now:       time.Now,
	}
}

// Sweep deletes every subscription expired as of now and kicks those users
// from the channel. Row deletion is the authoritative step and aborts the
// sweep on error; per-user Telegram failures are logged and skipped so one
// broken account cannot stall the rest. Returns the number of rows removed.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now()

	expired, err := s.storage.ListSubscriptions(ctx, subs.ListCriteria{
		ExpiredBefore: lo.ToPtr(cutoff),
	})
	if err != nil {
		return 0, errors.Wrap(err, "list expired subscriptions")
	}
	if len(expired) == 0 {
		s.logger.Info("sweep found no expired subscriptions")
		return 0, nil
	}

	removed, err := s.storage.DeleteSubscriptions(ctx, subs.DeleteCriteria{
		ExpiredBefore: lo.ToPtr(cutoff),
	})
	if err != nil {
		return 0, errors.Wrap(err, "delete expired subscriptions")
	}

	for _, subscription := range expired {
		if err := s.limiter.Wait(ctx); err != nil {
			return int(removed), errors.Wrap(err, "rate limiting")
		}
		s.evict(subscription)
	}

	metrics.SubscribersSwept.Add(float64(removed))
	s.logger.Info("sweep finished",
		slog.Int64("removed", removed),
		slog.Time("cutoff", cutoff))

	return int(removed), nil
}

func (s *Service) evict(subscription *subs.Subscription) {
	userID := subscription.UserID

	status, err := s.telegram.MemberStatus(s.channelID, userID)
	if err != nil {
		s.logger.Error("member status check failed, skipping",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		return
	}
	// Already out of the channel, nothing to kick.
	if status == "left" || status == "kicked" {
		return
	}

	if err := s.telegram.KickMember(s.channelID, userID); err != nil {
		s.logger.Error("kick failed, skipping",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		return
	}

	if err := s.telegram.SendMessage(userID, messages.SubscriptionExpired); err != nil {
		s.logger.Error("send expiry notice failed",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
	}

	s.logger.Info("expired subscriber removed", slog.Int64("user_id", userID))
}
