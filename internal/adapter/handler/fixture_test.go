package handler

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rl1809/botshop/internal/adapter/storage"
	"github.com/rl1809/botshop/internal/core/domain"
	"github.com/rl1809/botshop/internal/core/service"
)

type fixture struct {
	catalog    *service.CatalogService
	carts      *service.CartService
	orders     *service.OrderService
	users      *service.UserService
	dashboard  *service.DashboardService
	storefront *Storefront
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cols := service.NewCollections(storage.NewMemoryAdapter(), zap.NewNop())
	opts := service.Options{}
	catalog := service.NewCatalogService(cols, opts)
	carts := service.NewCartService(cols, catalog, opts)
	orders := service.NewOrderService(cols, nil, opts)
	users := service.NewUserService(cols)
	return &fixture{
		catalog:    catalog,
		carts:      carts,
		orders:     orders,
		users:      users,
		dashboard:  service.NewDashboardService(cols),
		storefront: NewStorefront(catalog, carts, orders, users, storage.NewMemoryIdempotencyGuard(0), nil),
	}
}

func (f *fixture) addProduct(t *testing.T, name, price string, stock int) string {
	t.Helper()
	id, err := f.catalog.CreateProduct(context.Background(), domain.ProductFields{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.NoError(t, err)
	return id
}
