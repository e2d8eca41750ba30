package port

import (
	"context"

	"github.com/rl1809/botshop/internal/core/domain"
)

// Notifier delivers order events to the owning user. Delivery is best
// effort: implementations must not block callers on slow sinks.
type Notifier interface {
	OrderCreated(ctx context.Context, order domain.Order)
	StatusChanged(ctx context.Context, order domain.Order)
}
