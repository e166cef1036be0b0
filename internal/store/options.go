package store

import (
	"time"

	ilog "github.com/amakane-hakari/sortkv/internal/log"
	"github.com/amakane-hakari/sortkv/internal/metrics"
)

const defaultShards = 16

// Config はストアの設定を表します。
type Config struct {
	Shards             int           // 2 の冪に切り上げる。1 未満なら 16
	CleanupInterval    time.Duration // 0 で無効
	Logger             ilog.Logger   // nil ならログを出さない
	Metrics            metrics.Interface
	EnableShardPadding bool
}

// Option はストアのオプションを設定する関数です。
type Option func(*Config)

func newConfig(opts []Option) Config {
	cfg := Config{Shards: defaultShards, Metrics: metrics.Noop{}}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Shards < 1 {
		cfg.Shards = defaultShards
	}
	cfg.Shards = nextPowerOfTwo(cfg.Shards)
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Noop{}
	}
	if cfg.CleanupInterval < 0 {
		cfg.CleanupInterval = 0
	}
	return cfg
}

// WithLogger はストアのロガーを設定するオプションです。
func WithLogger(l ilog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithMetrics はストアとエントリの追い出しで使うメトリクスを設定するオプションです。
func WithMetrics(m metrics.Interface) Option {
	return func(c *Config) { c.Metrics = m }
}

// WithShards はストアのシャード数を設定するオプションです。
func WithShards(n int) Option {
	return func(c *Config) { c.Shards = n }
}

// WithCleanupInterval は期限切れエントリを掃除する間隔を設定するオプションです。
func WithCleanupInterval(d time.Duration) Option {
	return func(c *Config) { c.CleanupInterval = d }
}

// WithShardPadding はシャードをキャッシュライン単位でパディングするオプションです。
func WithShardPadding() Option {
	return func(c *Config) { c.EnableShardPadding = true }
}
