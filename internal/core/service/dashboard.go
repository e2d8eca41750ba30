package service

import (
	"context"
	"slices"

	"github.com/rl1809/botshop/internal/core/domain"
)

// Summary is the admin panel's landing view.
type Summary struct {
	ProductCount  int            `json:"product_count"`
	OrderCount    int            `json:"order_count"`
	UserCount     int            `json:"user_count"`
	PendingOrders []domain.Order `json:"pending_orders"`
}

type DashboardService struct {
	c *Collections
}

func NewDashboardService(c *Collections) *DashboardService {
	return &DashboardService{c: c}
}

func (s *DashboardService) Summary(ctx context.Context) Summary {
	orders := s.c.Orders.All(ctx)
	pending := slices.DeleteFunc(OrdersNewestFirst(orders), func(o domain.Order) bool {
		return o.Status != domain.OrderStatusPending
	})
	return Summary{
		ProductCount:  len(s.c.Products.All(ctx)),
		OrderCount:    len(orders),
		UserCount:     len(s.c.Users.All(ctx)),
		PendingOrders: pending,
	}
}
