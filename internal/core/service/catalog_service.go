package service

import (
	"context"
	"maps"

	"github.com/rl1809/botshop/internal/core/domain"
)

type CatalogService struct {
	products *Collection[domain.Product]
	opts     Options
}

func NewCatalogService(c *Collections, opts Options) *CatalogService {
	return &CatalogService{products: c.Products, opts: opts.withDefaults()}
}

func (s *CatalogService) ListProducts(ctx context.Context) map[string]domain.Product {
	return s.products.All(ctx)
}

// GetProduct returns nil when no product has the given id.
func (s *CatalogService) GetProduct(ctx context.Context, id string) *domain.Product {
	p, ok := s.products.Get(ctx, id)
	if !ok {
		return nil
	}
	return &p
}

func (s *CatalogService) CreateProduct(ctx context.Context, fields domain.ProductFields) (string, error) {
	var id string
	_, err := s.products.Update(ctx, func(products map[string]domain.Product) (bool, error) {
		id = s.opts.IDs.NextID(maps.Keys(products))
		products[id] = domain.NewProduct(id, fields, s.opts.Now())
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateProduct overwrites every mutable field. It reports false when the
// product does not exist.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, fields domain.ProductFields) (bool, error) {
	return s.products.Update(ctx, func(products map[string]domain.Product) (bool, error) {
		p, ok := products[id]
		if !ok {
			return false, nil
		}
		p.Replace(fields, s.opts.Now())
		products[id] = p
		return true, nil
	})
}

// DeleteProduct removes the product. Carts and orders keep their own copies
// of name and price and are not touched.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) (bool, error) {
	return s.products.Update(ctx, func(products map[string]domain.Product) (bool, error) {
		if _, ok := products[id]; !ok {
			return false, nil
		}
		delete(products, id)
		return true, nil
	})
}
