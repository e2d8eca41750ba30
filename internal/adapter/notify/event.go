package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/botshop/internal/core/domain"
)

type EventKind string

const (
	EventOrderCreated  EventKind = "order_created"
	EventStatusChanged EventKind = "status_changed"
)

// Event is what the bot process receives and relays to the chat.
type Event struct {
	Kind      EventKind          `json:"kind"`
	UserID    string             `json:"user_id"`
	Customer  string             `json:"customer,omitempty"`
	OrderID   string             `json:"order_id"`
	Status    domain.OrderStatus `json:"status"`
	ItemCount int                `json:"item_count"`
	Total     decimal.Decimal    `json:"total"`
	Text      string             `json:"text"`
	At        time.Time          `json:"at"`
}

func customer(o domain.Order) string {
	if o.UserData == nil {
		return ""
	}
	return o.UserData.DisplayName()
}

func NewOrderCreatedEvent(o domain.Order) Event {
	return Event{
		Kind:      EventOrderCreated,
		UserID:    o.UserID,
		Customer:  customer(o),
		OrderID:   o.ID,
		Status:    o.Status,
		ItemCount: o.ItemCount(),
		Total:     o.Total,
		Text:      fmt.Sprintf("Order #%s has been placed! Total: $%s", o.ID, o.Total.StringFixed(2)),
		At:        o.CreatedAt,
	}
}

func NewStatusChangedEvent(o domain.Order) Event {
	at := o.CreatedAt
	if o.UpdatedAt != nil {
		at = *o.UpdatedAt
	}
	return Event{
		Kind:      EventStatusChanged,
		UserID:    o.UserID,
		Customer:  customer(o),
		OrderID:   o.ID,
		Status:    o.Status,
		ItemCount: o.ItemCount(),
		Total:     o.Total,
		Text:      fmt.Sprintf("Order #%s status updated: %s", o.ID, strings.ToUpper(string(o.Status))),
		At:        at,
	}
}
