package handler

import (
	"context"

	"google.golang.org/grpc"

	"github.com/rl1809/botshop/internal/core/domain"
)

type RegisterUserRequest struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ListProductsRequest struct {
	Page int `json:"page"`
}

type CartRequest struct {
	UserID string `json:"user_id"`
}

type AddToCartRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartItemRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Action    string `json:"action"`
}

type CheckoutRPCRequest struct {
	RequestID string `json:"request_id"`
	UserID    string `json:"user_id"`
	Address   string `json:"address"`
}

type ListOrdersRequest struct {
	UserID string `json:"user_id"`
	Page   int    `json:"page"`
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ProductsResponse struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Products   []domain.Product `json:"products"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
}

type CartResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	Cart      *domain.Cart `json:"cart,omitempty"`
	ItemCount int          `json:"item_count"`
}

type CheckoutResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Order   *domain.Order `json:"order,omitempty"`
}

type OrdersResponse struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	Orders     []domain.Order `json:"orders"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
}

// StorefrontServer is the shopper-facing RPC surface the chat front end
// talks to.
type StorefrontServer interface {
	RegisterUser(context.Context, *RegisterUserRequest) (*StatusResponse, error)
	ListProducts(context.Context, *ListProductsRequest) (*ProductsResponse, error)
	GetCart(context.Context, *CartRequest) (*CartResponse, error)
	AddToCart(context.Context, *AddToCartRequest) (*CartResponse, error)
	UpdateCartItem(context.Context, *UpdateCartItemRequest) (*CartResponse, error)
	ClearCart(context.Context, *CartRequest) (*CartResponse, error)
	Checkout(context.Context, *CheckoutRPCRequest) (*CheckoutResponse, error)
	ListOrders(context.Context, *ListOrdersRequest) (*OrdersResponse, error)
}

const storefrontServiceName = "botshop.Storefront"

var StorefrontServiceDesc = grpc.ServiceDesc{
	ServiceName: storefrontServiceName,
	HandlerType: (*StorefrontServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterUser", Handler: unaryHandler("RegisterUser", StorefrontServer.RegisterUser)},
		{MethodName: "ListProducts", Handler: unaryHandler("ListProducts", StorefrontServer.ListProducts)},
		{MethodName: "GetCart", Handler: unaryHandler("GetCart", StorefrontServer.GetCart)},
		{MethodName: "AddToCart", Handler: unaryHandler("AddToCart", StorefrontServer.AddToCart)},
		{MethodName: "UpdateCartItem", Handler: unaryHandler("UpdateCartItem", StorefrontServer.UpdateCartItem)},
		{MethodName: "ClearCart", Handler: unaryHandler("ClearCart", StorefrontServer.ClearCart)},
		{MethodName: "Checkout", Handler: unaryHandler("Checkout", StorefrontServer.Checkout)},
		{MethodName: "ListOrders", Handler: unaryHandler("ListOrders", StorefrontServer.ListOrders)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "botshop/storefront",
}

func RegisterStorefrontServer(s grpc.ServiceRegistrar, srv StorefrontServer) {
	s.RegisterService(&StorefrontServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + storefrontServiceName + "/" + method
}

func unaryHandler[Req, Resp any](method string, call func(StorefrontServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StorefrontServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(StorefrontServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type StorefrontClient struct {
	cc grpc.ClientConnInterface
}

func NewStorefrontClient(cc grpc.ClientConnInterface) *StorefrontClient {
	return &StorefrontClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StorefrontClient) RegisterUser(ctx context.Context, in *RegisterUserRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, "RegisterUser", in, opts)
}

func (c *StorefrontClient) ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ProductsResponse, error) {
	return invoke[ProductsResponse](ctx, c.cc, "ListProducts", in, opts)
}

func (c *StorefrontClient) GetCart(ctx context.Context, in *CartRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c.cc, "GetCart", in, opts)
}

func (c *StorefrontClient) AddToCart(ctx context.Context, in *AddToCartRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c.cc, "AddToCart", in, opts)
}

func (c *StorefrontClient) UpdateCartItem(ctx context.Context, in *UpdateCartItemRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c.cc, "UpdateCartItem", in, opts)
}

func (c *StorefrontClient) ClearCart(ctx context.Context, in *CartRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c.cc, "ClearCart", in, opts)
}

func (c *StorefrontClient) Checkout(ctx context.Context, in *CheckoutRPCRequest, opts ...grpc.CallOption) (*CheckoutResponse, error) {
	return invoke[CheckoutResponse](ctx, c.cc, "Checkout", in, opts)
}

func (c *StorefrontClient) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*OrdersResponse, error) {
	return invoke[OrdersResponse](ctx, c.cc, "ListOrders", in, opts)
}
