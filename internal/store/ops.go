package store

import (
	"fmt"
	"sync"
	"time"
)

// Set はキーと値をストアにセットします。
func (s *Store[K, V]) Set(key K, value V) {
	s.SetWithTTL(key, value, 0)
}

// SetWithTTL はキーと値をストアにセットします。
// 既存のキーはエントリを置き換えずに値と期限だけを更新します。
func (s *Store[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	now := time.Now()
	var exp int64
	if ttl > 0 {
		exp = now.Add(ttl).UnixNano()
	}
	mu, mp := s.getShard(key)
	mu.Lock()
	e, existed := mp[key]
	var stale *entry[K, V]
	if existed && e.expired(now.UnixNano()) {
		stale = e
		stale.removed.Store(true)
		existed = false
	}
	if existed {
		e.val.Store(&value)
		e.expireAt.Store(exp)
	} else {
		e = s.newEntry(key, value, exp)
		mp[key] = e
	}
	mu.Unlock()

	if stale != nil {
		s.cfg.Metrics.AddTTLExpired(1)
		s.notifyRemoved(stale)
	}

	if existed {
		s.cfg.Metrics.IncSetUpdate()
	} else {
		s.cfg.Metrics.IncSetNew()
	}

	if s.cfg.Logger != nil {
		if existed {
			s.cfg.Logger.Debug("store.update", "key", key)
		} else {
			s.cfg.Logger.Debug("store.set", "key", key, "ttl", ttl.String())
		}
	}

	s.notifyAccess(e)
}

// Get はキーに対応する値を取得します。
func (s *Store[K, V]) Get(key K) (V, bool) {
	mu, mp := s.getShard(key)
	mu.RLock()
	e, exists := mp[key]
	mu.RUnlock()
	if !exists {
		s.cfg.Metrics.IncGetMiss()
		var zero V
		return zero, false
	}
	if e.expired(time.Now().UnixNano()) {
		// 遅延削除
		mu.Lock()
		// 他ゴルーチンが置き換えていないか再確認
		cur, still := mp[key]
		removed := still && cur == e
		if removed {
			delete(mp, key)
			e.removed.Store(true)
		}
		mu.Unlock()
		if removed {
			s.cfg.Metrics.AddTTLExpired(1)
			if s.cfg.Logger != nil {
				s.cfg.Logger.Debug("store.ttl.expired", "key", key)
			}
			s.notifyRemoved(e)
		}
		s.cfg.Metrics.IncGetMiss()
		var zero V
		return zero, false
	}
	s.cfg.Metrics.IncGetHit()
	v := e.Value()
	s.notifyAccess(e)
	return v, true
}

// Load はキーに対応する値を返します。無ければ fetch の結果をセットして返します。
// 同じキーに対する同時の fetch は 1 回にまとめられます。
func (s *Store[K, V]) Load(key K, fetch func() (V, error)) (V, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}
	res, err, _ := s.loads.Do(flightKey(key), func() (any, error) {
		if v, ok := s.Get(key); ok {
			return v, nil
		}
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		s.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, fmt.Errorf("store: load %v: %w", key, err)
	}
	v, _ := res.(V)
	return v, nil
}

// Delete はキーに対応する値を削除します。
func (s *Store[K, V]) Delete(key K) {
	mu, mp := s.getShard(key)
	mu.Lock()
	e, existed := mp[key]
	if existed {
		delete(mp, key)
		e.removed.Store(true)
	}
	mu.Unlock()
	if existed {
		if s.cfg.Logger != nil {
			s.cfg.Logger.Debug("store.delete", "key", key)
		}
		s.notifyRemoved(e)
	}
}

// Pin はキーをピン留めし、ピンが外れるまでエビクションの対象外にします。
// 明示的な Delete と TTL 失効は妨げません。キーが無ければ false。
func (s *Store[K, V]) Pin(key K) bool {
	mu, mp := s.getShard(key)
	mu.RLock()
	defer mu.RUnlock()
	e, ok := mp[key]
	if !ok {
		return false
	}
	e.pins.Add(1)
	return true
}

// Unpin は Pin を 1 回分解除します。キーが無いかピン留めされていなければ false。
func (s *Store[K, V]) Unpin(key K) bool {
	mu, mp := s.getShard(key)
	mu.RLock()
	defer mu.RUnlock()
	e, ok := mp[key]
	if !ok {
		return false
	}
	for {
		n := e.pins.Load()
		if n <= 0 {
			return false
		}
		if e.pins.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

// Len はストア内のアイテム数を返します。
func (s *Store[K, V]) Len() int {
	now := time.Now().UnixNano()
	total := 0
	s.eachShard(func(_ int, mu *sync.RWMutex, m map[K]*entry[K, V]) {
		mu.RLock()
		for _, e := range m {
			if !e.expired(now) {
				total++
			}
		}
		mu.RUnlock()
	})
	return total
}
