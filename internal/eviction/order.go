package eviction

import "cmp"

// KV はランク付けに使うキーと値の組です。
type KV[K comparable, V any] struct {
	Key   K
	Value V
}

// CompareFunc はエントリの順序を決める比較関数です。
// 負の値なら a が先に追い出されます。
type CompareFunc[K comparable, V any] func(a, b KV[K, V]) int

// KeyOrder はキーの昇順で比較します。New のデフォルトです。
func KeyOrder[K cmp.Ordered, V any]() CompareFunc[K, V] {
	return func(a, b KV[K, V]) int { return cmp.Compare(a.Key, b.Key) }
}

// ValueOrder は値の昇順で比較します。
func ValueOrder[K comparable, V cmp.Ordered]() CompareFunc[K, V] {
	return func(a, b KV[K, V]) int { return cmp.Compare(a.Value, b.Value) }
}

// Insertion はすべてのエントリを同順位とみなします。通し番号だけで並ぶので FIFO になります。
func Insertion[K comparable, V any]() CompareFunc[K, V] {
	return func(KV[K, V], KV[K, V]) int { return 0 }
}

// Reverse は比較結果を反転します。
func Reverse[K comparable, V any](c CompareFunc[K, V]) CompareFunc[K, V] {
	return func(a, b KV[K, V]) int { return c(b, a) }
}

// holderOrder は CompareFunc に通し番号のタイブレークを加えた Holder の全順序です。
// 同じ Holder 同士のときだけ 0 を返します。
func holderOrder[K comparable, V any](c CompareFunc[K, V]) func(h1, h2 *Holder[K, V]) int {
	return func(h1, h2 *Holder[K, V]) int {
		if h1 == h2 {
			return 0
		}
		if r := c(h1.kv, h2.kv); r != 0 {
			return r
		}
		return cmp.Compare(h1.order, h2.order)
	}
}
