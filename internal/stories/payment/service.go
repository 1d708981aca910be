// Package payment initiates mobile-money push payments. The gateway only
// acknowledges the request; the outcome arrives later on the callback URL
// and is handled by the reconcile story.
package payment

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
)

type Service struct {
	gateway gateway
	logger  *slog.Logger
}

func New(gateway gateway, logger *slog.Logger) *Service {
	return &Service{gateway: gateway, logger: logger}
}

// Initiate asks the gateway to prompt the payer's phone for the amount and
// returns the checkout reference correlating the asynchronous result.
func (s *Service) Initiate(ctx context.Context, phone string, amountKES int64) (string, error) {
	if amountKES <= 0 {
		return "", errors.Errorf("invalid payment amount: %d", amountKES)
	}

	checkoutID, err := s.gateway.STKPush(ctx, phone, amountKES)
	if err != nil {
		s.logger.Error("payment initiation failed",
			slog.String("phone", phone),
			slog.Int64("amount_kes", amountKES),
			slog.String("error", err.Error()))
		return "", errors.Wrap(err, "stk push")
	}

	s.logger.Info("payment initiated",
		slog.String("phone", phone),
		slog.Int64("amount_kes", amountKES),
		slog.String("checkout_id", checkoutID))

	return checkoutID, nil
}
