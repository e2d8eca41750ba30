package service

import (
	"context"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/rl1809/botshop/internal/core/domain"
	"github.com/rl1809/botshop/internal/port"
)

type OrderService struct {
	orders   *Collection[domain.Order]
	carts    *Collection[domain.Cart]
	notifier port.Notifier
	opts     Options
}

func NewOrderService(c *Collections, notifier port.Notifier, opts Options) *OrderService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &OrderService{
		orders:   c.Orders,
		carts:    c.Carts,
		notifier: notifier,
		opts:     opts.withDefaults(),
	}
}

// CreateOrder turns the user's cart into a pending order and empties the
// cart in the same write. ok is false when the cart is empty, in which case
// nothing is written.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, profile *domain.User, address string) (string, bool, error) {
	var created domain.Order
	ok, err := UpdatePair(ctx, s.orders, s.carts,
		func(orders map[string]domain.Order, carts map[string]domain.Cart) (bool, error) {
			cart, exists := carts[userID]
			if !exists {
				return false, nil
			}
			cart.Recalculate()
			if cart.IsEmpty() {
				return false, nil
			}
			id := s.opts.IDs.NextID(maps.Keys(orders))
			created = domain.NewOrder(id, userID, profile, cart, address, s.opts.Now())
			orders[id] = created
			carts[userID] = domain.NewCart()
			return true, nil
		})
	if err != nil {
		return "", false, fmt.Errorf("create order for user %s: %w", userID, err)
	}
	if !ok {
		return "", false, nil
	}

	s.opts.Logger.Info("order created",
		zap.String("order_id", created.ID),
		zap.String("user_id", userID),
		zap.String("total", created.Total.StringFixed(2)))
	s.notifier.OrderCreated(ctx, created)
	return created.ID, true, nil
}

// GetOrder returns nil when no order has the given id.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) *domain.Order {
	o, ok := s.orders.Get(ctx, orderID)
	if !ok {
		return nil
	}
	return &o
}

func (s *OrderService) ListOrdersForUser(ctx context.Context, userID string) map[string]domain.Order {
	out := map[string]domain.Order{}
	for id, o := range s.orders.All(ctx) {
		if o.UserID == userID {
			out[id] = o
		}
	}
	return out
}

func (s *OrderService) ListAllOrders(ctx context.Context) map[string]domain.Order {
	return s.orders.All(ctx)
}

// UpdateStatus sets the order's status. It reports false when the order
// does not exist. No transition graph is enforced.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (bool, error) {
	if s.opts.StrictValidation && !status.Valid() {
		return false, fmt.Errorf("update order %s to %q: %w", orderID, status, ErrInvalidStatus)
	}

	var updated domain.Order
	ok, err := s.orders.Update(ctx, func(orders map[string]domain.Order) (bool, error) {
		o, exists := orders[orderID]
		if !exists {
			return false, nil
		}
		o.SetStatus(status, s.opts.Now())
		orders[orderID] = o
		updated = o
		return true, nil
	})
	if err != nil || !ok {
		return ok, err
	}

	s.notifier.StatusChanged(ctx, updated)
	return true, nil
}

type nopNotifier struct{}

func (nopNotifier) OrderCreated(context.Context, domain.Order)  {}
func (nopNotifier) StatusChanged(context.Context, domain.Order) {}
