package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amakane-hakari/sortkv/internal/eviction"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"SORTKV_HTTP_ADDR", "SORTKV_SHARDS", "SORTKV_MAX_SIZE", "SORTKV_EVICTION_ORDER",
		"SORTKV_CLEANUP_INTERVAL", "SORTKV_SHARD_PADDING", "SORTKV_METRICS_NAMESPACE",
		"SORTKV_SHUTDOWN_TIMEOUT", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}

	c, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 16, c.Shards)
	assert.Equal(t, eviction.DefaultMaxSize, c.MaxSize)
	assert.Equal(t, OrderKey, c.EvictionOrder)
	assert.Equal(t, time.Minute, c.CleanupInterval)
	assert.False(t, c.ShardPadding)
	assert.Equal(t, "sortkv", c.MetricsNamespace)
	assert.Equal(t, 5*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoad_EnvAndFlags(t *testing.T) {
	t.Setenv("SORTKV_MAX_SIZE", "50")
	t.Setenv("SORTKV_EVICTION_ORDER", OrderFIFO)
	t.Setenv("SORTKV_CLEANUP_INTERVAL", "0")
	t.Setenv("SORTKV_SHARD_PADDING", "true")

	c, err := Load([]string{"-max-size", "10", "-addr", ":9090"})
	require.NoError(t, err)
	assert.Equal(t, 10, c.MaxSize, "flag wins over env")
	assert.Equal(t, ":9090", c.HTTPAddr)
	assert.Equal(t, OrderFIFO, c.EvictionOrder)
	assert.Zero(t, c.CleanupInterval)
	assert.True(t, c.ShardPadding)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"max size", []string{"-max-size", "0"}, "max-size"},
		{"shards", []string{"-shards", "-1"}, "shards"},
		{"order", []string{"-eviction-order", "random"}, "eviction-order"},
		{"unknown flag", []string{"-nope"}, "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
