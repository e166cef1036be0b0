package store

import (
	"sync"
	"time"
)

func (s *Store[K, V]) cleanupLoop() {
	defer s.wg.Done()
	t := time.NewTicker(s.cleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.scanExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Store[K, V]) scanExpired() {
	now := time.Now().UnixNano()
	totalExpired := 0
	s.eachShard(func(i int, mu *sync.RWMutex, m map[K]*entry[K, V]) {
		var expired []*entry[K, V]
		mu.Lock()
		for k, e := range m {
			if e.expired(now) {
				delete(m, k)
				e.removed.Store(true)
				expired = append(expired, e)
			}
		}
		mu.Unlock()
		if len(expired) == 0 {
			return
		}
		totalExpired += len(expired)
		for _, e := range expired {
			s.notifyRemoved(e)
		}
		if s.cfg.Logger != nil {
			s.cfg.Logger.Info("store.ttl.cleanup", "shard", i, "removed", len(expired))
		}
	})
	if totalExpired > 0 {
		s.cfg.Metrics.AddTTLExpired(totalExpired)
	}
}
