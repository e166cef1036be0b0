package store

import "sync"

type shardCompact[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]*entry[K, V]
}

type shardPadding[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]*entry[K, V]
	_  [cacheLineSize]byte // cache line padding
}

func (s *Store[K, V]) getShard(key K) (rw *sync.RWMutex, m map[K]*entry[K, V]) {
	idx := s.shardIndex(key)
	if s.cfg.EnableShardPadding {
		sh := &s.shardsPadded[idx]
		return &sh.mu, sh.m
	}
	sh := &s.shardsCompact[idx]
	return &sh.mu, sh.m
}

// eachShard は全シャードを順に f へ渡します。
func (s *Store[K, V]) eachShard(f func(i int, mu *sync.RWMutex, m map[K]*entry[K, V])) {
	if s.cfg.EnableShardPadding {
		for i := range s.shardsPadded {
			sh := &s.shardsPadded[i]
			f(i, &sh.mu, sh.m)
		}
		return
	}
	for i := range s.shardsCompact {
		sh := &s.shardsCompact[i]
		f(i, &sh.mu, sh.m)
	}
}
