package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/botshop/internal/adapter/handler"
	"github.com/rl1809/botshop/internal/adapter/storage"
	"github.com/rl1809/botshop/internal/config"
	"github.com/rl1809/botshop/internal/core/domain"
	"github.com/rl1809/botshop/internal/core/service"
	"github.com/rl1809/botshop/internal/logger"
	"github.com/rl1809/botshop/internal/port"
)

const (
	shoppers      = 50
	sharedAdds    = 100
	productStock  = 1000
	productPrice  = "2.50"
	sharedShopper = "stress-shared"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}
	log := logger.NewForEnvironment(cfg.IsProduction(), logger.Config{Level: "warn", Format: cfg.Log.Format, Output: cfg.Log.Output})
	defer log.Sync()

	var store port.CollectionStore = storage.NewMemoryAdapter()
	var guard port.IdempotencyGuard = storage.NewMemoryIdempotencyGuard(time.Hour)
	if cfg.Storage.Driver == "redis" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("failed to connect redis", zap.Error(err))
		}
		defer rdb.Close()

		prefix := "stress:" + uuid.NewString() + ":"
		store = storage.NewRedisAdapter(rdb, prefix, log)
		guard = storage.NewRedisIdempotencyGuard(rdb, prefix, time.Hour)
	}

	cols := service.NewCollections(store, log)
	opts := service.Options{Logger: log}
	catalog := service.NewCatalogService(cols, opts)
	carts := service.NewCartService(cols, catalog, opts)
	orders := service.NewOrderService(cols, nil, opts)
	users := service.NewUserService(cols)
	storefront := handler.NewStorefront(catalog, carts, orders, users, guard, log)

	productID, err := catalog.CreateProduct(ctx, domain.ProductFields{
		Name:  "Stress Widget",
		Price: decimal.RequireFromString(productPrice),
		Stock: productStock,
	})
	if err != nil {
		log.Fatal("failed to create product", zap.Error(err))
	}

	start := time.Now()

	// Many goroutines growing one cart: every successful add must land.
	var addOK, addFail atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < sharedAdds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := storefront.AddToCart(ctx, sharedShopper, productID, 1); err != nil {
				addFail.Add(1)
				return
			}
			addOK.Add(1)
		}()
	}
	wg.Wait()
	sharedQty := storefront.Cart(ctx, sharedShopper).Items[productID].Quantity

	// Many shoppers checking out at once, each sending its request twice.
	var placed, duplicates, failed atomic.Int32
	orderIDs := make(chan string, shoppers)
	for i := 0; i < shoppers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := fmt.Sprintf("stress-user-%d", n)
			if _, err := storefront.AddToCart(ctx, userID, productID, 1); err != nil {
				failed.Add(1)
				return
			}

			requestID := uuid.NewString()
			for attempt := 0; attempt < 2; attempt++ {
				order, err := storefront.Checkout(ctx, requestID, userID, "1 Stress Lane")
				switch {
				case err == nil:
					placed.Add(1)
					orderIDs <- order.ID
				case errors.Is(err, handler.ErrDuplicateRequest):
					duplicates.Add(1)
				default:
					failed.Add(1)
				}
			}
		}(i)
	}
	wg.Wait()
	close(orderIDs)
	elapsed := time.Since(start)

	unique := map[string]bool{}
	for id := range orderIDs {
		unique[id] = true
	}

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Storage Driver:    %s\n", cfg.Storage.Driver)
	fmt.Printf("Shared Adds:       %d ok / %d failed\n", addOK.Load(), addFail.Load())
	fmt.Printf("Shared Cart Qty:   %d\n", sharedQty)
	fmt.Printf("Orders Placed:     %d\n", placed.Load())
	fmt.Printf("Duplicates:        %d\n", duplicates.Load())
	fmt.Printf("Failures:          %d\n", failed.Load())
	fmt.Printf("Duration:          %v\n", elapsed)
	fmt.Println("==========================================")

	check(sharedQty == int(addOK.Load()),
		"no lost cart updates", fmt.Sprintf("cart holds %d, %d adds succeeded", sharedQty, addOK.Load()))
	check(int(placed.Load()) == shoppers && int(duplicates.Load()) == shoppers,
		"one order per shopper, every retry rejected",
		fmt.Sprintf("placed %d, duplicates %d", placed.Load(), duplicates.Load()))
	check(len(unique) == int(placed.Load()),
		"order ids unique", fmt.Sprintf("%d unique ids for %d orders", len(unique), placed.Load()))
}

func check(ok bool, name, detail string) {
	if ok {
		fmt.Printf("PASS: %s\n", name)
		return
	}
	fmt.Printf("FAIL: %s (%s)\n", name, detail)
}
