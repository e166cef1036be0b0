package eviction

import (
	ilog "github.com/amakane-hakari/sortkv/internal/log"
	"github.com/amakane-hakari/sortkv/internal/metrics"
)

type config struct {
	logger  ilog.Logger
	metrics metrics.Interface
}

// Option はポリシーのオプションを設定する関数です。
type Option func(*config)

// WithLogger はポリシーのロガーを設定するオプションです。
func WithLogger(l ilog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMetrics はポリシーのメトリクスを設定するオプションです。
func WithMetrics(m metrics.Interface) Option {
	return func(c *config) { c.metrics = m }
}
