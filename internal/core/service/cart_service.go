package service

import (
	"context"
	"fmt"

	"github.com/rl1809/botshop/internal/core/domain"
)

type CartService struct {
	carts   *Collection[domain.Cart]
	catalog *CatalogService
	opts    Options
}

func NewCartService(c *Collections, catalog *CatalogService, opts Options) *CartService {
	return &CartService{carts: c.Carts, catalog: catalog, opts: opts.withDefaults()}
}

// GetCart returns the user's cart, or an empty one. It never writes.
func (s *CartService) GetCart(ctx context.Context, userID string) domain.Cart {
	cart, ok := s.carts.Get(ctx, userID)
	if !ok {
		return domain.NewCart()
	}
	cart.Recalculate()
	return cart
}

// AddItem adds quantity of the product to the user's cart, accumulating onto
// an existing line. It reports false when the product does not exist. Stock
// is the caller's concern unless strict validation is enabled.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (bool, error) {
	return s.addItem(ctx, userID, productID, quantity, s.opts.StrictValidation)
}

// AddItemWithinStock is AddItem with the stock check always made under the
// carts lock: the line never grows past the product's stock, and
// ErrInsufficientStock is returned instead.
func (s *CartService) AddItemWithinStock(ctx context.Context, userID, productID string, quantity int) (bool, error) {
	return s.addItem(ctx, userID, productID, quantity, true)
}

func (s *CartService) addItem(ctx context.Context, userID, productID string, quantity int, checkStock bool) (bool, error) {
	product := s.catalog.GetProduct(ctx, productID)
	if product == nil {
		return false, nil
	}
	if s.opts.StrictValidation && quantity <= 0 {
		return false, fmt.Errorf("add %d of product %s: %w", quantity, productID, ErrInvalidQuantity)
	}

	return s.carts.Update(ctx, func(carts map[string]domain.Cart) (bool, error) {
		cart, ok := carts[userID]
		if !ok {
			cart = domain.NewCart()
		}
		if checkStock && cart.Items[productID].Quantity+quantity > product.Stock {
			return false, fmt.Errorf("add %d of product %s: %w", quantity, productID, ErrInsufficientStock)
		}
		cart.Add(*product, quantity)
		carts[userID] = cart
		return true, nil
	})
}

// SetItemQuantity replaces the quantity of an existing line; quantity <= 0
// removes it. It reports false when the user has no cart or no such line.
func (s *CartService) SetItemQuantity(ctx context.Context, userID, productID string, quantity int) (bool, error) {
	return s.setItemQuantity(ctx, userID, productID, quantity, s.opts.StrictValidation)
}

// SetItemQuantityWithinStock is SetItemQuantity with the stock check always
// made under the carts lock. Decreases are never refused.
func (s *CartService) SetItemQuantityWithinStock(ctx context.Context, userID, productID string, quantity int) (bool, error) {
	return s.setItemQuantity(ctx, userID, productID, quantity, true)
}

func (s *CartService) setItemQuantity(ctx context.Context, userID, productID string, quantity int, checkStock bool) (bool, error) {
	var product *domain.Product
	if checkStock && quantity > 0 {
		product = s.catalog.GetProduct(ctx, productID)
	}

	return s.carts.Update(ctx, func(carts map[string]domain.Cart) (bool, error) {
		cart, ok := carts[userID]
		if !ok {
			return false, nil
		}
		if _, ok := cart.Items[productID]; !ok {
			return false, nil
		}
		if checkStock && quantity > cart.Items[productID].Quantity &&
			(product == nil || quantity > product.Stock) {
			return false, fmt.Errorf("set product %s to %d: %w", productID, quantity, ErrInsufficientStock)
		}
		cart.SetQuantity(productID, quantity)
		carts[userID] = cart
		return true, nil
	})
}

// ClearCart empties the user's cart. Clearing a missing or empty cart is a
// successful no-op.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	_, err := s.carts.Update(ctx, func(carts map[string]domain.Cart) (bool, error) {
		cart, ok := carts[userID]
		if !ok || (cart.IsEmpty() && cart.Total.IsZero()) {
			return false, nil
		}
		carts[userID] = domain.NewCart()
		return true, nil
	})
	return err
}
