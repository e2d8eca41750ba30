package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	HTTP        HTTPConfig
	GRPC        GRPCConfig
	Storage     StorageConfig
	MySQL       MySQLConfig
	Redis       RedisConfig
	Log         LogConfig
	Engine      EngineConfig
	Notify      NotifyConfig
	Idempotency IdempotencyConfig
	Pagination  PaginationConfig
}

type AppConfig struct {
	Name string
	Env  string
}

type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type GRPCConfig struct {
	Addr    string
	Enabled bool
}

// StorageConfig selects the collection backend
type StorageConfig struct {
	Driver  string // file, mysql, redis, memory
	DataDir string // file driver only
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	PoolSize  int
	KeyPrefix string
}

// LogConfig fields left empty take the environment default of the logger.
type LogConfig struct {
	Level  string
	Format string
	Output string
}

type EngineConfig struct {
	IDStrategy       string // sequential, uuid
	StrictValidation bool
}

type NotifyConfig struct {
	Workers       int
	QueueSize     int
	ChannelPrefix string
}

type IdempotencyConfig struct {
	TTL time.Duration
}

type PaginationConfig struct {
	ProductsPageSize int
	OrdersPageSize   int
}

// Load reads config.yaml if present, then BOTSHOP_ prefixed environment
// variables (BOTSHOP_STORAGE_DRIVER overrides storage.driver).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/botshop")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("BOTSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		HTTP: HTTPConfig{
			Addr:            v.GetString("http.addr"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		GRPC: GRPCConfig{
			Addr:    v.GetString("grpc.addr"),
			Enabled: !v.IsSet("grpc.enabled") || v.GetBool("grpc.enabled"),
		},
		Storage: StorageConfig{
			Driver:  v.GetString("storage.driver"),
			DataDir: v.GetString("storage.data_dir"),
		},
		MySQL: MySQLConfig{
			DSN:             v.GetString("mysql.dsn"),
			MaxOpenConns:    v.GetInt("mysql.max_open_conns"),
			MaxIdleConns:    v.GetInt("mysql.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("mysql.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Addr:      v.GetString("redis.addr"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			PoolSize:  v.GetInt("redis.pool_size"),
			KeyPrefix: v.GetString("redis.key_prefix"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Engine: EngineConfig{
			IDStrategy:       v.GetString("engine.id_strategy"),
			StrictValidation: v.GetBool("engine.strict_validation"),
		},
		Notify: NotifyConfig{
			Workers:       v.GetInt("notify.workers"),
			QueueSize:     v.GetInt("notify.queue_size"),
			ChannelPrefix: v.GetString("notify.channel_prefix"),
		},
		Idempotency: IdempotencyConfig{
			TTL: v.GetDuration("idempotency.ttl"),
		},
		Pagination: PaginationConfig{
			ProductsPageSize: v.GetInt("pagination.products_page_size"),
			OrdersPageSize:   v.GetInt("pagination.orders_page_size"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "botshop"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 5 * time.Second
	}
	if cfg.GRPC.Addr == "" {
		cfg.GRPC.Addr = ":50051"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "file"
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.MySQL.DSN == "" {
		cfg.MySQL.DSN = "root:root@tcp(localhost:3306)/botshop?parseTime=true"
	}
	if cfg.MySQL.MaxOpenConns == 0 {
		cfg.MySQL.MaxOpenConns = 50
	}
	if cfg.MySQL.MaxIdleConns == 0 {
		cfg.MySQL.MaxIdleConns = 25
	}
	if cfg.MySQL.ConnMaxLifetime == 0 {
		cfg.MySQL.ConnMaxLifetime = 5 * time.Minute
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 100
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "botshop:"
	}
	if cfg.Engine.IDStrategy == "" {
		cfg.Engine.IDStrategy = "sequential"
	}
	if cfg.Notify.Workers == 0 {
		cfg.Notify.Workers = 4
	}
	if cfg.Notify.QueueSize == 0 {
		cfg.Notify.QueueSize = 1000
	}
	if cfg.Notify.ChannelPrefix == "" {
		cfg.Notify.ChannelPrefix = "botshop:notifications"
	}
	if cfg.Idempotency.TTL == 0 {
		cfg.Idempotency.TTL = 24 * time.Hour
	}
	if cfg.Pagination.ProductsPageSize == 0 {
		cfg.Pagination.ProductsPageSize = 5
	}
	if cfg.Pagination.OrdersPageSize == 0 {
		cfg.Pagination.OrdersPageSize = 3
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "file", "mysql", "redis", "memory":
	default:
		return fmt.Errorf("invalid storage driver %q", c.Storage.Driver)
	}
	switch c.Engine.IDStrategy {
	case "sequential", "uuid":
	default:
		return fmt.Errorf("invalid engine id strategy %q", c.Engine.IDStrategy)
	}
	if c.Notify.Workers < 0 || c.Notify.QueueSize < 0 {
		return errors.New("notify workers and queue size must not be negative")
	}
	if c.Pagination.ProductsPageSize < 0 || c.Pagination.OrdersPageSize < 0 {
		return errors.New("page sizes must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
