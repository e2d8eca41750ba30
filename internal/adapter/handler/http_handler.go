package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rl1809/botshop/internal/core/domain"
	"github.com/rl1809/botshop/internal/core/service"
)

type Response struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Data    any                `json:"data,omitempty"`
	Errors  []ValidationDetail `json:"errors,omitempty"`
}

type PageResponse[T any] struct {
	Items      []T  `json:"items"`
	Page       int  `json:"page"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

func newPageResponse[T any](p service.Page[T]) PageResponse[T] {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return PageResponse[T]{
		Items:      items,
		Page:       p.Page,
		TotalPages: p.TotalPages,
		HasPrev:    p.HasPrev(),
		HasNext:    p.HasNext(),
	}
}

type PageSizes struct {
	Products int
	Orders   int
}

type HTTPHandler struct {
	storefront *Storefront
	catalog    *service.CatalogService
	orders     *service.OrderService
	users      *service.UserService
	dashboard  *service.DashboardService
	pageSizes  PageSizes
	validate   *validator.Validate
	logger     *zap.Logger
}

func NewHTTPHandler(storefront *Storefront, catalog *service.CatalogService, orders *service.OrderService,
	users *service.UserService, dashboard *service.DashboardService, pageSizes PageSizes, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{
		storefront: storefront,
		catalog:    catalog,
		orders:     orders,
		users:      users,
		dashboard:  dashboard,
		pageSizes:  pageSizes,
		validate:   newValidator(),
		logger:     logger,
	}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)

	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)

	mux.HandleFunc("GET /api/admin/dashboard", h.Dashboard)
	mux.HandleFunc("POST /api/admin/products", h.CreateProduct)
	mux.HandleFunc("PUT /api/admin/products/{id}", h.UpdateProduct)
	mux.HandleFunc("DELETE /api/admin/products/{id}", h.DeleteProduct)
	mux.HandleFunc("GET /api/admin/orders", h.ListAllOrders)
	mux.HandleFunc("GET /api/admin/orders/{id}", h.GetOrder)
	mux.HandleFunc("POST /api/admin/orders/{id}/status", h.UpdateOrderStatus)
	mux.HandleFunc("GET /api/admin/users", h.ListUsers)

	mux.HandleFunc("PUT /api/users/{userID}", h.RegisterUser)
	mux.HandleFunc("GET /api/users/{userID}/cart", h.GetCart)
	mux.HandleFunc("DELETE /api/users/{userID}/cart", h.ClearCart)
	mux.HandleFunc("POST /api/users/{userID}/cart/items", h.AddToCart)
	mux.HandleFunc("PUT /api/users/{userID}/cart/items/{productID}", h.SetCartQuantity)
	mux.HandleFunc("PATCH /api/users/{userID}/cart/items/{productID}", h.UpdateCartItem)
	mux.HandleFunc("POST /api/users/{userID}/checkout", h.Checkout)
	mux.HandleFunc("GET /api/users/{userID}/orders", h.ListUserOrders)
	mux.HandleFunc("GET /api/users/{userID}/orders/{orderID}", h.GetUserOrder)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := service.SortedProducts(h.catalog.ListProducts(r.Context()))
	page := service.Paginate(products, pageParam(r), h.pageSizes.Products)
	writeJSON(w, http.StatusOK, Response{Success: true, Data: newPageResponse(page)})
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product := h.catalog.GetProduct(r.Context(), r.PathValue("id"))
	if product == nil {
		writeError(w, http.StatusNotFound, ErrProductNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: product})
}

func (h *HTTPHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: h.dashboard.Summary(r.Context())})
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	fields, err := req.Fields()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid product", Errors: validationDetails(err)})
		return
	}

	id, err := h.catalog.CreateProduct(r.Context(), fields)
	if err != nil {
		h.internalError(w, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Product added successfully",
		Data:    h.catalog.GetProduct(r.Context(), id),
	})
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	fields, err := req.Fields()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid product", Errors: validationDetails(err)})
		return
	}

	id := r.PathValue("id")
	ok, err := h.catalog.UpdateProduct(r.Context(), id, fields)
	if err != nil {
		h.internalError(w, "update product", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, ErrProductNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product updated successfully",
		Data:    h.catalog.GetProduct(r.Context(), id),
	})
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ok, err := h.catalog.DeleteProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		h.internalError(w, "delete product", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, ErrProductNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Product deleted successfully"})
}

func (h *HTTPHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders := service.OrdersNewestFirst(h.orders.ListAllOrders(r.Context()))
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := orders[:0]
		for _, o := range orders {
			if string(o.Status) == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: orders})
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order := h.orders.GetOrder(r.Context(), r.PathValue("id"))
	if order == nil {
		writeError(w, http.StatusNotFound, ErrOrderNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: order})
}

func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	id := r.PathValue("id")
	ok, err := h.orders.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			writeError(w, http.StatusBadRequest, userMessage(err))
			return
		}
		h.internalError(w, "update order status", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, ErrOrderNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Order status updated successfully",
		Data:    h.orders.GetOrder(r.Context(), id),
	})
}

func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: h.users.ListUsers(r.Context())})
}

func (h *HTTPHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !h.decode(w, r, &req) {
		return
	}
	user := domain.User{
		ID:        r.PathValue("userID"),
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := h.storefront.RegisterUser(r.Context(), user); err != nil {
		h.internalError(w, "register user", err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: user})
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: h.storefront.Cart(r.Context(), r.PathValue("userID"))})
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.storefront.ClearCart(r.Context(), r.PathValue("userID"))
	if err != nil {
		h.storefrontError(w, "clear cart", err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Your cart has been cleared", Data: cart})
}

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.storefront.AddToCart(r.Context(), r.PathValue("userID"), req.ProductID, req.Quantity)
	if err != nil {
		h.storefrontError(w, "add to cart", err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Added to cart", Data: cart})
}

func (h *HTTPHandler) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}

	cart, err := h.storefront.SetQuantity(r.Context(), r.PathValue("userID"), r.PathValue("productID"), *req.Quantity)
	if err != nil {
		h.storefrontError(w, "set cart quantity", err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: cart})
}

func (h *HTTPHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req CartActionRequest
	if !h.decode(w, r, &req) {
		return
	}

	cart, err := h.storefront.UpdateItem(r.Context(), r.PathValue("userID"), r.PathValue("productID"), req.Action)
	if err != nil {
		h.storefrontError(w, "update cart item", err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: cart})
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.storefront.Checkout(r.Context(), req.RequestID, r.PathValue("userID"), req.Address)
	if err != nil {
		h.storefrontError(w, "checkout", err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Your order has been placed successfully",
		Data:    order,
	})
}

func (h *HTTPHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	page := h.storefront.Orders(r.Context(), r.PathValue("userID"), pageParam(r), h.pageSizes.Orders)
	writeJSON(w, http.StatusOK, Response{Success: true, Data: newPageResponse(page)})
}

func (h *HTTPHandler) GetUserOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.storefront.Order(r.Context(), r.PathValue("userID"), r.PathValue("orderID"))
	if err != nil {
		h.storefrontError(w, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: order})
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Message: "request validation failed",
			Errors:  validationDetails(err),
		})
		return false
	}
	return true
}

func (h *HTTPHandler) storefrontError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrItemNotInCart):
		status = http.StatusNotFound
	case errors.Is(err, ErrNotEnoughStock), errors.Is(err, ErrMaxStockReached),
		errors.Is(err, service.ErrInsufficientStock):
		status = http.StatusConflict
	case errors.Is(err, ErrDuplicateRequest):
		status = http.StatusConflict
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrUnknownAction), errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidQuantity):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.internalError(w, op, err)
		return
	}
	writeError(w, status, userMessage(err))
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("request failed", zap.String("op", op), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return page
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
