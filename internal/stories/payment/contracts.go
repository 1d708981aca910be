package payment

import "context"

type gateway interface {
	STKPush(ctx context.Context, phone string, amountKES int64) (string, error)
}
