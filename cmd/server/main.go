package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/botshop/internal/adapter/handler"
	"github.com/rl1809/botshop/internal/adapter/notify"
	"github.com/rl1809/botshop/internal/adapter/storage"
	"github.com/rl1809/botshop/internal/config"
	"github.com/rl1809/botshop/internal/core/service"
	"github.com/rl1809/botshop/internal/logger"
	"github.com/rl1809/botshop/internal/port"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet.
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	log := logger.NewForEnvironment(cfg.IsProduction(), logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is required for the redis driver and optional otherwise: without
	// it checkout dedup stays in process and notifications go to the log.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer rdb.Close()

	pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
	redisErr := rdb.Ping(pingCtx).Err()
	pingCancel()
	if redisErr != nil {
		if cfg.Storage.Driver == "redis" {
			log.Fatal("failed to connect redis", zap.String("addr", cfg.Redis.Addr), zap.Error(redisErr))
		}
		log.Warn("redis unavailable, using in-process idempotency and log notifications", zap.Error(redisErr))
	} else {
		log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	}

	store, closeStore := openStore(ctx, cfg, rdb, log)
	defer closeStore()
	log.Info("storage ready", zap.String("driver", cfg.Storage.Driver))

	var guard port.IdempotencyGuard
	var sink notify.Sink
	if redisErr == nil {
		guard = storage.NewRedisIdempotencyGuard(rdb, cfg.Redis.KeyPrefix, cfg.Idempotency.TTL)
		sink = notify.NewRedisPublisher(rdb, cfg.Notify.ChannelPrefix)
	} else {
		guard = storage.NewMemoryIdempotencyGuard(cfg.Idempotency.TTL)
		sink = notify.NewLogSink(log)
	}

	dispatcher := notify.NewDispatcher(sink, cfg.Notify.Workers, cfg.Notify.QueueSize, log)
	log.Info("started notification workers", zap.Int("workers", cfg.Notify.Workers))

	ids, err := service.NewIDGenerator(cfg.Engine.IDStrategy)
	if err != nil {
		log.Fatal("invalid id strategy", zap.Error(err))
	}
	opts := service.Options{Logger: log, IDs: ids, StrictValidation: cfg.Engine.StrictValidation}

	cols := service.NewCollections(store, log)
	catalog := service.NewCatalogService(cols, opts)
	carts := service.NewCartService(cols, catalog, opts)
	orders := service.NewOrderService(cols, dispatcher, opts)
	users := service.NewUserService(cols)
	dashboard := service.NewDashboardService(cols)

	storefront := handler.NewStorefront(catalog, carts, orders, users, guard, log)
	pageSizes := handler.PageSizes{
		Products: cfg.Pagination.ProductsPageSize,
		Orders:   cfg.Pagination.OrdersPageSize,
	}

	var grpcServer *grpc.Server
	if cfg.GRPC.Enabled {
		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(handler.LoggingInterceptor(log)))
		handler.RegisterStorefrontServer(grpcServer, handler.NewGRPCHandler(storefront, catalog, pageSizes))

		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			log.Fatal("failed to listen", zap.String("addr", cfg.GRPC.Addr), zap.Error(err))
		}
		go func() {
			log.Info("gRPC server listening", zap.String("addr", cfg.GRPC.Addr))
			if err := grpcServer.Serve(lis); err != nil {
				log.Error("gRPC server error", zap.Error(err))
			}
		}()
	}

	httpHandler := handler.NewHTTPHandler(storefront, catalog, orders, users, dashboard, pageSizes, log)
	mux := http.NewServeMux()
	httpHandler.Register(mux)

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	log.Info("HTTP server stopped")

	if grpcServer != nil {
		grpcServer.GracefulStop()
		log.Info("gRPC server stopped")
	}

	dispatcher.Close()
	log.Info("notification workers stopped", zap.Int64("dropped", dispatcher.Dropped()))
}

// openStore builds the configured collection store and returns a func
// releasing its resources.
func openStore(ctx context.Context, cfg *config.Config, rdb *redis.Client, log *zap.Logger) (port.CollectionStore, func()) {
	switch cfg.Storage.Driver {
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			log.Fatal("failed to open mysql", zap.Error(err))
		}
		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

		if err := db.PingContext(ctx); err != nil {
			log.Fatal("failed to ping mysql", zap.Error(err))
		}
		log.Info("connected to mysql")

		store := storage.NewMySQLAdapter(db, log)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatal("failed to prepare schema", zap.Error(err))
		}
		return store, func() { db.Close() }

	case "redis":
		return storage.NewRedisAdapter(rdb, cfg.Redis.KeyPrefix, log), func() {}

	case "memory":
		return storage.NewMemoryAdapter(), func() {}

	default:
		store, err := storage.NewFileAdapter(cfg.Storage.DataDir, log)
		if err != nil {
			log.Fatal("failed to open data dir", zap.String("dir", cfg.Storage.DataDir), zap.Error(err))
		}
		return store, func() {}
	}
}
