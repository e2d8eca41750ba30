package port

import "context"

type IdempotencyGuard interface {
	// Claim records key, returns false if it was already claimed
	Claim(ctx context.Context, key string) (bool, error)

	// Release forgets key so the request can be retried
	Release(ctx context.Context, key string) error
}
