// Package reconcile turns asynchronous payment results into subscription
// rows and channel access. Callbacks are acknowledged even when they
// cannot be attributed; the gateway retries on anything else.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"datrix-bot/internal/metrics"
	"datrix-bot/internal/stories/subs"
	"datrix-bot/internal/telegram/messages"
)

type Service struct {
	storage   subscriptionStorage
	plans     planCatalog
	grants    grantIssuer
	messenger messenger
	logger    *slog.Logger

	// defaultValidity is applied when the paid amount matches no plan,
	// e.g. after a price change between prompt and payment.
	defaultValidity time.Duration
	now             func() time.Time
}

func New(
	subscriptionStorage subscriptionStorage,
	plans planCatalog,
	grants grantIssuer,
	messenger messenger,
	logger *slog.Logger,
	defaultValidity time.Duration,
) *Service {
	return &Service{
		storage:         subscriptionStorage,
		plans:           plans,
		grants:          grants,
		messenger:       messenger,
		logger:          logger,
		defaultValidity: defaultValidity,
		now:             time.Now,
	}
}

// HandleResult processes one payment result. Failures are logged and the
// payer notified when the phone can be attributed. Successes are matched
// against the phone directory, persisted and rewarded with an invite.
// A redelivered result with a reference already on the row is a no-op.
func (s *Service) HandleResult(ctx context.Context, result Result) error {
	if !result.Succeeded() {
		s.logger.Warn("payment failed",
			slog.Int("code", result.Code),
			slog.String("desc", result.Desc),
			slog.String("checkout_id", result.CheckoutID))

		if result.Phone != "" {
			if entry, err := s.storage.GetPhoneEntry(ctx, result.Phone); err == nil && entry != nil {
				if sendErr := s.messenger.SendMessage(entry.ChatID, messages.PaymentFailed); sendErr != nil {
					s.logger.Error("send payment failure notice failed",
						slog.Int64("chat_id", entry.ChatID),
						slog.String("error", sendErr.Error()))
				}
			}
		}
		return nil
	}

	entry, err := s.storage.GetPhoneEntry(ctx, result.Phone)
	if err != nil {
		return errors.Wrap(err, "resolve phone")
	}
	if entry == nil {
		metrics.PaymentsUnmatched.Inc()
		s.logger.Warn("payment from unknown phone",
			slog.String("phone", result.Phone),
			slog.String("receipt", result.ReceiptID),
			slog.Int64("amount_kes", result.AmountKES))
		return nil
	}

	return s.settle(ctx, entry.ChatID, entry.Username, result)
}

// Simulate settles a payment for the chat without a gateway round trip.
// Admin tooling only. The synthetic receipt keeps the idempotency path
// identical to real callbacks.
func (s *Service) Simulate(ctx context.Context, chatID, amountKES int64, username *string) error {
	result := Result{
		Code:      0,
		Phone:     "simulated",
		AmountKES: amountKES,
		ReceiptID: "SIM-" + uuid.NewString(),
	}
	return s.settle(ctx, chatID, username, result)
}

func (s *Service) settle(ctx context.Context, chatID int64, username *string, result Result) error {
	existing, err := s.storage.GetSubscription(ctx, subs.GetCriteria{UserIDs: []int64{chatID}})
	if err != nil {
		return errors.Wrap(err, "load subscription")
	}

	ref := result.Reference()
	if existing != nil && ref != "" && existing.PaymentRef == ref {
		s.logger.Info("duplicate payment result ignored",
			slog.Int64("chat_id", chatID),
			slog.String("receipt", ref))
		return nil
	}

	// Renewals stack: paying before expiry extends the remaining time
	// instead of restarting from now.
	base := s.now()
	if existing != nil && existing.ExpiresAt.After(base) {
		base = existing.ExpiresAt
	}

	validity := s.defaultValidity
	if plan, ok := s.plans.ByAmount(result.AmountKES); ok {
		validity = plan.Duration()
	} else {
		s.logger.Warn("paid amount matches no plan, using default validity",
			slog.Int64("amount_kes", result.AmountKES))
	}

	subscription := subs.Subscription{
		UserID:     chatID,
		Username:   username,
		Phone:      result.Phone,
		AmountKES:  result.AmountKES,
		PaymentRef: ref,
		ExpiresAt:  base.Add(validity),
	}
	if _, err := s.storage.UpsertSubscription(ctx, subscription); err != nil {
		return errors.Wrap(err, "persist subscription")
	}

	metrics.PaymentsReconciled.Inc()
	s.logger.Info("payment reconciled",
		slog.Int64("chat_id", chatID),
		slog.String("receipt", ref),
		slog.Int64("amount_kes", result.AmountKES),
		slog.Time("expires_at", subscription.ExpiresAt))

	// The subscription row is already durable. A failed invite must not
	// surface as a callback error, or the gateway would redeliver.
	if _, err := s.grants.Grant(ctx, chatID); err != nil {
		s.logger.Error("access grant failed after reconciliation",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()))
	}

	return nil
}
