package service

import (
	"context"
	"testing"
	"time"

	"github.com/rl1809/botshop/internal/core/domain"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name      string
		page      int
		wantPage  int
		wantItems []int
		wantTotal int
	}{
		{"first", 1, 1, []int{1, 2, 3}, 3},
		{"last partial", 3, 3, []int{7}, 3},
		{"zero falls back", 0, 1, []int{1, 2, 3}, 3},
		{"beyond falls back", 9, 1, []int{1, 2, 3}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(items, tt.page, 3)
			if p.Page != tt.wantPage || p.TotalPages != tt.wantTotal || len(p.Items) != len(tt.wantItems) {
				t.Fatalf("page = %+v", p)
			}
			for i, v := range tt.wantItems {
				if p.Items[i] != v {
					t.Fatalf("items = %v, want %v", p.Items, tt.wantItems)
				}
			}
		})
	}

	p := Paginate(items, 2, 3)
	if !p.HasPrev() || !p.HasNext() {
		t.Errorf("middle page nav = %v %v", p.HasPrev(), p.HasNext())
	}

	empty := Paginate([]int{}, 4, 3)
	if empty.Page != 1 || empty.TotalPages != 0 || empty.HasNext() || empty.HasPrev() {
		t.Errorf("empty page = %+v", empty)
	}
}

func TestSortedProducts_NumericOrder(t *testing.T) {
	products := map[string]domain.Product{}
	for _, id := range []string{"10", "2", "1", "abc"} {
		products[id] = domain.Product{ID: id}
	}

	got := SortedProducts(products)
	want := []string{"1", "2", "10", "abc"}
	for i, p := range got {
		if p.ID != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestOrdersNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	orders := map[string]domain.Order{
		"1": {ID: "1", CreatedAt: base},
		"2": {ID: "2", CreatedAt: base.Add(time.Hour)},
		"3": {ID: "3", CreatedAt: base.Add(time.Hour)},
	}

	got := OrdersNewestFirst(orders)
	want := []string{"3", "2", "1"}
	for i, o := range got {
		if o.ID != want[i] {
			t.Fatalf("position %d = %s, want %s", i, o.ID, want[i])
		}
	}
}

func TestDashboardSummary(t *testing.T) {
	e := newEngine(false)
	ctx := context.Background()
	pid := e.mustCreateProduct("Widget", "5.00", 10)
	e.mustCreateProduct("Gadget", "1.00", 10)
	e.users.UpsertUser(ctx, domain.User{ID: "u1"})

	var ids []string
	for i := 0; i < 3; i++ {
		e.carts.AddItem(ctx, "u1", pid, 1)
		id, _, _ := e.orders.CreateOrder(ctx, "u1", nil, "addr")
		ids = append(ids, id)
	}
	e.orders.UpdateStatus(ctx, ids[0], domain.OrderStatusDelivered)

	dashboard := NewDashboardService(e.cols)
	s := dashboard.Summary(ctx)
	if s.ProductCount != 2 || s.OrderCount != 3 || s.UserCount != 1 {
		t.Errorf("summary counts = %+v", s)
	}
	if len(s.PendingOrders) != 2 || s.PendingOrders[0].ID != ids[2] {
		t.Errorf("pending = %+v", s.PendingOrders)
	}
}
