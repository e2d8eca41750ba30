package handler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/botshop/internal/core/domain"
	"github.com/rl1809/botshop/internal/core/service"
	"github.com/rl1809/botshop/internal/port"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrItemNotInCart    = errors.New("item not found in cart")
	ErrNotEnoughStock   = errors.New("not enough stock available")
	ErrMaxStockReached  = errors.New("maximum available stock reached")
	ErrEmptyCart        = errors.New("your cart is empty")
	ErrDuplicateRequest = errors.New("duplicate request")
	ErrUnknownAction    = errors.New("unknown cart action")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
)

// Cart actions offered by the bot's cart keyboard.
const (
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
	ActionRemove   = "remove"
)

// Storefront holds the shopper-side rules: carts grow only within stock,
// checked under the carts lock, and repeated checkouts are suppressed.
// HTTP and gRPC handlers both go through it.
type Storefront struct {
	catalog *service.CatalogService
	carts   *service.CartService
	orders  *service.OrderService
	users   *service.UserService
	guard   port.IdempotencyGuard
	logger  *zap.Logger
}

func NewStorefront(catalog *service.CatalogService, carts *service.CartService, orders *service.OrderService,
	users *service.UserService, guard port.IdempotencyGuard, logger *zap.Logger) *Storefront {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Storefront{
		catalog: catalog,
		carts:   carts,
		orders:  orders,
		users:   users,
		guard:   guard,
		logger:  logger,
	}
}

func (s *Storefront) RegisterUser(ctx context.Context, user domain.User) error {
	_, err := s.users.UpsertUser(ctx, user)
	return err
}

func (s *Storefront) Cart(ctx context.Context, userID string) domain.Cart {
	return s.carts.GetCart(ctx, userID)
}

// AddToCart adds quantity units if the product has stock for them on top of
// what the cart already holds.
func (s *Storefront) AddToCart(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	if quantity <= 0 {
		return domain.Cart{}, ErrInvalidQuantity
	}
	ok, err := s.carts.AddItemWithinStock(ctx, userID, productID, quantity)
	if err != nil {
		return domain.Cart{}, stockError(err, ErrNotEnoughStock)
	}
	if !ok {
		return domain.Cart{}, ErrProductNotFound
	}
	return s.carts.GetCart(ctx, userID), nil
}

// UpdateItem applies one of the cart keyboard actions. Decreasing a line
// of one removes it.
func (s *Storefront) UpdateItem(ctx context.Context, userID, productID, action string) (domain.Cart, error) {
	line, ok := s.carts.GetCart(ctx, userID).Items[productID]
	if !ok {
		return domain.Cart{}, ErrItemNotInCart
	}

	var quantity int
	switch action {
	case ActionIncrease:
		cart, err := s.setQuantity(ctx, userID, productID, line.Quantity+1)
		return cart, stockError(err, ErrMaxStockReached)
	case ActionDecrease:
		quantity = line.Quantity - 1
	case ActionRemove:
		quantity = 0
	default:
		return domain.Cart{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	return s.setQuantity(ctx, userID, productID, quantity)
}

// SetQuantity replaces a line's quantity; zero removes the line.
func (s *Storefront) SetQuantity(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	cart, err := s.setQuantity(ctx, userID, productID, quantity)
	return cart, stockError(err, ErrNotEnoughStock)
}

func (s *Storefront) setQuantity(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	ok, err := s.carts.SetItemQuantityWithinStock(ctx, userID, productID, quantity)
	if err != nil {
		return domain.Cart{}, err
	}
	if !ok {
		return domain.Cart{}, ErrItemNotInCart
	}
	return s.carts.GetCart(ctx, userID), nil
}

func (s *Storefront) ClearCart(ctx context.Context, userID string) (domain.Cart, error) {
	if err := s.carts.ClearCart(ctx, userID); err != nil {
		return domain.Cart{}, err
	}
	return s.carts.GetCart(ctx, userID), nil
}

// Checkout places the user's cart as an order. A non-empty requestID makes
// the call idempotent: a repeated id is rejected with ErrDuplicateRequest.
func (s *Storefront) Checkout(ctx context.Context, requestID, userID, address string) (*domain.Order, error) {
	if requestID != "" {
		ok, err := s.guard.Claim(ctx, checkoutKey(userID, requestID))
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}
	}

	orderID, ok, err := s.orders.CreateOrder(ctx, userID, s.users.GetUser(ctx, userID), address)
	if err != nil || !ok {
		s.release(ctx, requestID, userID)
		if err != nil {
			return nil, err
		}
		return nil, ErrEmptyCart
	}

	order := s.orders.GetOrder(ctx, orderID)
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *Storefront) release(ctx context.Context, requestID, userID string) {
	if requestID == "" {
		return
	}
	if err := s.guard.Release(ctx, checkoutKey(userID, requestID)); err != nil {
		s.logger.Warn("failed to release checkout request",
			zap.String("request_id", requestID), zap.Error(err))
	}
}

// Orders returns one page of the user's orders, newest first.
func (s *Storefront) Orders(ctx context.Context, userID string, page, size int) service.Page[domain.Order] {
	return service.Paginate(service.OrdersNewestFirst(s.orders.ListOrdersForUser(ctx, userID)), page, size)
}

// Order returns the order only if it belongs to userID.
func (s *Storefront) Order(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order := s.orders.GetOrder(ctx, orderID)
	if order == nil || order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func checkoutKey(userID, requestID string) string {
	return fmt.Sprintf("checkout:%s:%s", userID, requestID)
}

// userMessage maps storefront failures to short shopper-facing text.
// stockError reports the engine's stock refusal as the storefront error
// the shopper sees for that action.
func stockError(err error, as error) error {
	if errors.Is(err, service.ErrInsufficientStock) {
		return as
	}
	return err
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrItemNotInCart), errors.Is(err, ErrNotEnoughStock),
		errors.Is(err, ErrMaxStockReached), errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrDuplicateRequest), errors.Is(err, ErrUnknownAction),
		errors.Is(err, ErrInvalidQuantity):
		return err.Error()
	case errors.Is(err, service.ErrInsufficientStock):
		return ErrNotEnoughStock.Error()
	case errors.Is(err, service.ErrInvalidQuantity):
		return ErrInvalidQuantity.Error()
	case errors.Is(err, service.ErrInvalidStatus):
		return "invalid status"
	}
	return "internal error"
}
