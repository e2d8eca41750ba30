package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/botshop/internal/core/domain"
	"github.com/rl1809/botshop/internal/core/service"
)

// GRPCHandler reports business failures in-band through Success and
// Message. A non-nil error is reserved for transport problems.
type GRPCHandler struct {
	storefront *Storefront
	catalog    *service.CatalogService
	pageSizes  PageSizes
}

func NewGRPCHandler(storefront *Storefront, catalog *service.CatalogService, pageSizes PageSizes) *GRPCHandler {
	return &GRPCHandler{storefront: storefront, catalog: catalog, pageSizes: pageSizes}
}

func (h *GRPCHandler) RegisterUser(ctx context.Context, req *RegisterUserRequest) (*StatusResponse, error) {
	if req.UserID == "" {
		return &StatusResponse{Success: false, Message: "missing user id"}, nil
	}
	err := h.storefront.RegisterUser(ctx, domain.User{
		ID:        req.UserID,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return &StatusResponse{Success: false, Message: userMessage(err)}, nil
	}
	return &StatusResponse{Success: true, Message: "welcome"}, nil
}

func (h *GRPCHandler) ListProducts(ctx context.Context, req *ListProductsRequest) (*ProductsResponse, error) {
	page := service.Paginate(service.SortedProducts(h.catalog.ListProducts(ctx)), req.Page, h.pageSizes.Products)
	if len(page.Items) == 0 {
		return &ProductsResponse{Success: true, Message: "No products available at the moment.", Page: page.Page}, nil
	}
	return &ProductsResponse{
		Success:    true,
		Products:   page.Items,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	}, nil
}

func (h *GRPCHandler) GetCart(ctx context.Context, req *CartRequest) (*CartResponse, error) {
	cart := h.storefront.Cart(ctx, req.UserID)
	if cart.IsEmpty() {
		return &CartResponse{Success: true, Message: "Your cart is empty.", Cart: &cart}, nil
	}
	return &CartResponse{Success: true, Cart: &cart, ItemCount: cart.ItemCount()}, nil
}

func (h *GRPCHandler) AddToCart(ctx context.Context, req *AddToCartRequest) (*CartResponse, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	cart, err := h.storefront.AddToCart(ctx, req.UserID, req.ProductID, quantity)
	return cartResponse(cart, err, "Added to cart")
}

func (h *GRPCHandler) UpdateCartItem(ctx context.Context, req *UpdateCartItemRequest) (*CartResponse, error) {
	cart, err := h.storefront.UpdateItem(ctx, req.UserID, req.ProductID, req.Action)
	return cartResponse(cart, err, "Cart updated")
}

func (h *GRPCHandler) ClearCart(ctx context.Context, req *CartRequest) (*CartResponse, error) {
	cart, err := h.storefront.ClearCart(ctx, req.UserID)
	return cartResponse(cart, err, "Your cart has been cleared")
}

func (h *GRPCHandler) Checkout(ctx context.Context, req *CheckoutRPCRequest) (*CheckoutResponse, error) {
	if req.Address == "" {
		return &CheckoutResponse{Success: false, Message: "missing shipping address"}, nil
	}
	order, err := h.storefront.Checkout(ctx, req.RequestID, req.UserID, req.Address)
	if err != nil {
		return &CheckoutResponse{Success: false, Message: userMessage(err)}, nil
	}
	return &CheckoutResponse{
		Success: true,
		Message: "Your order has been placed successfully",
		Order:   order,
	}, nil
}

func (h *GRPCHandler) ListOrders(ctx context.Context, req *ListOrdersRequest) (*OrdersResponse, error) {
	page := h.storefront.Orders(ctx, req.UserID, req.Page, h.pageSizes.Orders)
	if len(page.Items) == 0 {
		return &OrdersResponse{Success: true, Message: "You haven't placed any orders yet.", Page: page.Page}, nil
	}
	return &OrdersResponse{
		Success:    true,
		Orders:     page.Items,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	}, nil
}

func cartResponse(cart domain.Cart, err error, message string) (*CartResponse, error) {
	if err != nil {
		return &CartResponse{Success: false, Message: userMessage(err)}, nil
	}
	return &CartResponse{Success: true, Message: message, Cart: &cart, ItemCount: cart.ItemCount()}, nil
}

// LoggingInterceptor logs each unary call with its latency.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("latency", time.Since(start)),
		}
		if err != nil {
			logger.Warn("rpc failed", append(fields, zap.Error(err))...)
			return resp, err
		}
		logger.Debug("rpc handled", fields...)
		return resp, nil
	}
}
