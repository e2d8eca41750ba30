package service

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/rl1809/botshop/internal/core/domain"
)

type Page[T any] struct {
	Items      []T
	Page       int
	TotalPages int
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

// Paginate returns the requested 1-based page. A page outside the valid
// range falls back to the first page.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = len(items)
	}
	if len(items) == 0 || size == 0 {
		return Page[T]{Page: 1}
	}
	total := (len(items) + size - 1) / size
	if page < 1 || page > total {
		page = 1
	}
	start := (page - 1) * size
	end := min(start+size, len(items))
	return Page[T]{Items: items[start:end], Page: page, TotalPages: total}
}

// SortedProducts orders products by id, numerically where ids are numbers.
func SortedProducts(products map[string]domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Product) int { return compareIDs(a.ID, b.ID) })
	return out
}

// OrdersNewestFirst orders by creation time, most recent first.
func OrdersNewestFirst(orders map[string]domain.Order) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b domain.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(b.ID, a.ID)
	})
	return out
}

func compareIDs(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}
