package store

import (
	"sync/atomic"

	"github.com/amakane-hakari/sortkv/internal/eviction"
)

const cacheLineSize = 64

// entry はストアに格納された 1 つのキーと値です。eviction.Entry を実装します。
type entry[K comparable, V any] struct {
	eviction.MetaSlot[K, V]

	key      K
	val      atomic.Pointer[V]
	expireAt atomic.Int64 // 0 = no expiry (UnixNano)
	removed  atomic.Bool
	pins     atomic.Int32
	st       *Store[K, V]
}

func (s *Store[K, V]) newEntry(key K, value V, expireAt int64) *entry[K, V] {
	e := &entry[K, V]{key: key, st: s}
	e.val.Store(&value)
	e.expireAt.Store(expireAt)
	return e
}

func (e *entry[K, V]) Key() K { return e.key }

func (e *entry[K, V]) Value() V { return *e.val.Load() }

// IsCached はエントリがまだシャードに格納されているかを返します。
func (e *entry[K, V]) IsCached() bool { return !e.removed.Load() }

func (e *entry[K, V]) expired(now int64) bool {
	exp := e.expireAt.Load()
	return exp > 0 && exp <= now
}

// Evict はエントリをストアから追い出します。
// ピン留めされている、または既に別のエントリに置き換わっている場合は false を返します。
func (e *entry[K, V]) Evict() bool {
	s := e.st
	mu, mp := s.getShard(e.key)
	mu.Lock()
	if e.pins.Load() > 0 || mp[e.key] != e {
		mu.Unlock()
		return false
	}
	delete(mp, e.key)
	e.removed.Store(true)
	mu.Unlock()

	s.cfg.Metrics.AddEvicted(1)
	if s.cfg.Logger != nil {
		s.cfg.Logger.Info("store.evict", "key", e.key)
	}
	s.notifyRemoved(e)
	return true
}
