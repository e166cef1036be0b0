// Package config はサーバーの設定を環境変数とフラグから読み込みます。
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/amakane-hakari/sortkv/internal/eviction"
)

// 追い出し順の名前です。
const (
	OrderKey     = "key"
	OrderKeyDesc = "key-desc"
	OrderValue   = "value"
	OrderFIFO    = "fifo"
)

// Config はサーバーの起動設定です。
type Config struct {
	HTTPAddr         string
	Shards           int
	MaxSize          int
	EvictionOrder    string
	CleanupInterval  time.Duration
	ShardPadding     bool
	MetricsNamespace string
	ShutdownTimeout  time.Duration
	LogLevel         string
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if v == "0" {
			return 0
		}
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseBoolEnv(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}

// Load は環境変数を既定値として args のフラグを解析し、検証済みの Config を返します。
func Load(args []string) (*Config, error) {
	var c Config
	fs := flag.NewFlagSet("sortkv", flag.ContinueOnError)

	fs.StringVar(&c.HTTPAddr, "addr", envOr("SORTKV_HTTP_ADDR", ":8080"), "HTTP listen address")
	fs.IntVar(&c.Shards, "shards", parseIntEnv("SORTKV_SHARDS", 16), "Number of store shards")
	fs.IntVar(&c.MaxSize, "max-size", parseIntEnv("SORTKV_MAX_SIZE", eviction.DefaultMaxSize), "Maximum number of tracked entries before eviction")
	fs.StringVar(&c.EvictionOrder, "eviction-order", envOr("SORTKV_EVICTION_ORDER", OrderKey), "Eviction order: key, key-desc, value or fifo")
	fs.DurationVar(&c.CleanupInterval, "cleanup-interval", parseDurationEnv("SORTKV_CLEANUP_INTERVAL", time.Minute), "TTL sweep interval (0 disables)")
	fs.BoolVar(&c.ShardPadding, "shard-padding", parseBoolEnv("SORTKV_SHARD_PADDING"), "Pad shards to a cache line")
	fs.StringVar(&c.MetricsNamespace, "metrics-namespace", envOr("SORTKV_METRICS_NAMESPACE", "sortkv"), "Prometheus metric namespace")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", parseDurationEnv("SORTKV_SHUTDOWN_TIMEOUT", 5*time.Second), "Graceful shutdown timeout")
	fs.StringVar(&c.LogLevel, "log-level", envOr("LOG_LEVEL", "info"), "Log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate は値の範囲を検査します。
func (c *Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.Shards <= 0 {
		errs = append(errs, fmt.Errorf("shards must be > 0 but %d was given", c.Shards))
	}
	if c.MaxSize <= 0 {
		errs = append(errs, fmt.Errorf("max-size must be > 0 but %d was given", c.MaxSize))
	}
	switch c.EvictionOrder {
	case OrderKey, OrderKeyDesc, OrderValue, OrderFIFO:
	default:
		errs = append(errs, fmt.Errorf("unknown eviction-order %q", c.EvictionOrder))
	}
	if c.CleanupInterval < 0 {
		errs = append(errs, fmt.Errorf("cleanup-interval must not be negative: %s", c.CleanupInterval))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown-timeout must be > 0: %s", c.ShutdownTimeout))
	}
	return errors.Join(errs...)
}
