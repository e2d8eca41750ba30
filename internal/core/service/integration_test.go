package service_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rl1809/botshop/internal/adapter/storage"
	"github.com/rl1809/botshop/internal/core/domain"
	"github.com/rl1809/botshop/internal/core/service"
	"github.com/rl1809/botshop/internal/port"
)

func redisStore(t *testing.T) port.CollectionStore {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	// A fresh prefix per test keeps runs independent.
	return storage.NewRedisAdapter(rdb, "botshop-test:"+uuid.NewString()+":", nil)
}

func mysqlStore(t *testing.T) port.CollectionStore {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/botshop_test?parseTime=true"
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("MySQL not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := storage.NewMySQLAdapter(db, nil)
	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM collections`); err != nil {
		t.Fatalf("reset collections: %v", err)
	}
	return store
}

type node struct {
	catalog *service.CatalogService
	carts   *service.CartService
	orders  *service.OrderService
}

// newNode builds an engine with its own locks, standing in for a separate
// process sharing the store.
func newNode(store port.CollectionStore) node {
	cols := service.NewCollections(store, nil)
	catalog := service.NewCatalogService(cols, service.Options{})
	return node{
		catalog: catalog,
		carts:   service.NewCartService(cols, catalog, service.Options{}),
		orders:  service.NewOrderService(cols, nil, service.Options{}),
	}
}

func runSharedStoreFlow(t *testing.T, store port.CollectionStore) {
	ctx := context.Background()
	a, b := newNode(store), newNode(store)

	pid, err := a.catalog.CreateProduct(ctx, domain.ProductFields{
		Name:  "Widget",
		Price: decimal.RequireFromString("2.50"),
		Stock: 1000,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	var wg sync.WaitGroup
	var added atomic.Int32
	for i := 0; i < 20; i++ {
		n := a
		if i%2 == 1 {
			n = b
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := n.carts.AddItem(ctx, "shopper", pid, 1)
			if err == nil && ok {
				added.Add(1)
			}
		}()
	}
	wg.Wait()

	cart := b.carts.GetCart(ctx, "shopper")
	if got := cart.Items[pid].Quantity; got != int(added.Load()) {
		t.Fatalf("cart quantity %d, successful adds %d", got, added.Load())
	}
	if added.Load() == 0 {
		t.Fatal("no add succeeded")
	}

	id, ok, err := b.orders.CreateOrder(ctx, "shopper", nil, "1 Main St")
	if err != nil || !ok {
		t.Fatalf("create order: %v %v", ok, err)
	}
	order := a.orders.GetOrder(ctx, id)
	if order == nil {
		t.Fatal("order not visible from the other node")
	}
	want := decimal.RequireFromString("2.50").Mul(decimal.NewFromInt(int64(added.Load())))
	if !order.Total.Equal(want) {
		t.Errorf("order total %s, want %s", order.Total, want)
	}
	if !a.carts.GetCart(ctx, "shopper").IsEmpty() {
		t.Error("cart not emptied")
	}
}

func TestIntegration_RedisSharedStore(t *testing.T) {
	runSharedStoreFlow(t, redisStore(t))
}

func TestIntegration_MySQLSharedStore(t *testing.T) {
	runSharedStoreFlow(t, mysqlStore(t))
}

func TestIntegration_RedisIdempotentCheckoutKeys(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	guard := storage.NewRedisIdempotencyGuard(rdb, "botshop-test:", 0)
	key := fmt.Sprintf("checkout:%s", uuid.NewString())
	defer guard.Release(context.Background(), key)

	first, err := guard.Claim(context.Background(), key)
	if err != nil || !first {
		t.Fatalf("first claim: %v %v", first, err)
	}
	second, err := guard.Claim(context.Background(), key)
	if err != nil || second {
		t.Fatalf("second claim: %v %v", second, err)
	}
}
