package expiry

import "context"

type sweeper interface {
	Sweep(ctx context.Context) (int, error)
}
