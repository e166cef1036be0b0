package store

import (
	"fmt"
	"hash/maphash"
	"math/bits"
)

// shardIndex はストアごとのシードでキーをハッシュし、シャード番号を返します。
func (s *Store[K, V]) shardIndex(key K) int {
	return int(maphash.Comparable(s.seed, key) & uint64(s.shardMask))
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// flightKey は singleflight 用のキー文字列を作ります。
func flightKey[K comparable](key K) string {
	if s, ok := any(key).(string); ok {
		return s
	}
	return fmt.Sprintf("%T:%v", key, key)
}
