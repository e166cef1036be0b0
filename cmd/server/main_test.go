package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amakane-hakari/sortkv/internal/config"
	"github.com/amakane-hakari/sortkv/internal/eviction"
)

func TestOrderFor(t *testing.T) {
	a := eviction.KV[string, string]{Key: "a", Value: "z"}
	b := eviction.KV[string, string]{Key: "b", Value: "y"}

	tests := []struct {
		name string
		want int
	}{
		{config.OrderKey, -1},
		{config.OrderKeyDesc, 1},
		{config.OrderValue, 1},
		{config.OrderFIFO, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := orderFor(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c(a, b))
		})
	}

	_, err := orderFor("random")
	assert.Error(t, err)
}
