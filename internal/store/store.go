package store

import (
	"hash/maphash"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/amakane-hakari/sortkv/internal/eviction"
)

// Store は KVS のストアを表します。
type Store[K comparable, V any] struct {
	cfg             Config
	shardsCompact   []shardCompact[K, V]
	shardsPadded    []shardPadding[K, V]
	seed            maphash.Seed
	shardMask       uint32        // hash & mask で index
	cleanupInterval time.Duration // 0 で無効
	stopCh          chan struct{}
	wg              sync.WaitGroup
	loads           singleflight.Group

	policy eviction.Policy[K, V]
}

// New は新しい Store を作成します。
func New[K comparable, V any](opts ...Option) *Store[K, V] {
	cfg := newConfig(opts)
	s := &Store[K, V]{
		cfg:             cfg,
		seed:            maphash.MakeSeed(),
		shardMask:       uint32(cfg.Shards - 1),
		cleanupInterval: cfg.CleanupInterval,
	}
	if cfg.EnableShardPadding {
		s.shardsPadded = make([]shardPadding[K, V], cfg.Shards)
		for i := range s.shardsPadded {
			s.shardsPadded[i].m = make(map[K]*entry[K, V])
		}
	} else {
		s.shardsCompact = make([]shardCompact[K, V], cfg.Shards)
		for i := range s.shardsCompact {
			s.shardsCompact[i].m = make(map[K]*entry[K, V])
		}
	}

	if s.cleanupInterval > 0 {
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go s.cleanupLoop()
	}

	return s
}

// WithPolicy はストアのエビクションポリシーを設定するメソッドです。
// ストアを使い始める前に呼び出してください。
func (s *Store[K, V]) WithPolicy(p eviction.Policy[K, V]) *Store[K, V] {
	s.policy = p
	return s
}

// Close はストアをクローズします。
func (s *Store[K, V]) Close() {
	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Store[K, V]) notifyAccess(e *entry[K, V]) {
	if s.policy == nil {
		return
	}
	s.policy.OnAccess(false, e)
	s.reportTrackedSize()
}

func (s *Store[K, V]) notifyRemoved(e *entry[K, V]) {
	if s.policy == nil {
		return
	}
	s.policy.OnAccess(true, e)
	s.reportTrackedSize()
}

func (s *Store[K, V]) reportTrackedSize() {
	if sp, ok := s.policy.(interface{ CurrentSize() int }); ok {
		s.cfg.Metrics.SetTrackedSize(sp.CurrentSize())
	}
}
