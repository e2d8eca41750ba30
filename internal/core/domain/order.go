package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists the recognized statuses in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Order struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	UserData  *User               `json:"user_data"`
	Items     map[string]CartLine `json:"items"`
	Total     decimal.Decimal     `json:"total"`
	Address   string              `json:"address"`
	Status    OrderStatus         `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt *time.Time          `json:"updated_at,omitempty"`
}

// NewOrder snapshots the cart into a pending order. The cart is cloned so
// later cart mutation cannot reach the order.
func NewOrder(id, userID string, profile *User, cart Cart, address string, now time.Time) Order {
	snapshot := cart.Clone()
	var user *User
	if profile != nil {
		u := *profile
		user = &u
	}
	return Order{
		ID:        id,
		UserID:    userID,
		UserData:  user,
		Items:     snapshot.Items,
		Total:     snapshot.Total,
		Address:   address,
		Status:    OrderStatusPending,
		CreatedAt: now,
	}
}

// SetStatus moves the order to status. Any status may follow any other.
func (o *Order) SetStatus(status OrderStatus, now time.Time) {
	o.Status = status
	o.UpdatedAt = &now
}

// ItemCount is the sum of quantities over all lines.
func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Items {
		n += l.Quantity
	}
	return n
}
