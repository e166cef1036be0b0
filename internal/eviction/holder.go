package eviction

import "sync/atomic"

// Holder はポリシーがエントリごとに保持するメタデータです。
// エントリ参照がクリアされた Holder は死んでおり、二度と生き返りません。
type Holder[K comparable, V any] struct {
	ref   atomic.Pointer[entryRef[K, V]]
	kv    KV[K, V] // 作成時点のスナップショット。並び順はこれと order だけで決まる
	order uint64
}

type entryRef[K comparable, V any] struct {
	e Entry[K, V]
}

func newHolder[K comparable, V any](e Entry[K, V], order uint64) *Holder[K, V] {
	h := &Holder[K, V]{
		kv:    KV[K, V]{Key: e.Key(), Value: e.Value()},
		order: order,
	}
	h.ref.Store(&entryRef[K, V]{e: e})
	return h
}

// Entry は Holder が参照するエントリを返します。死んだ Holder なら false。
func (h *Holder[K, V]) Entry() (Entry[K, V], bool) {
	r := h.ref.Load()
	if r == nil {
		return nil, false
	}
	return r.e, true
}

// Order はタイブレーク用の通し番号を返します。
func (h *Holder[K, V]) Order() uint64 { return h.order }

func (h *Holder[K, V]) live() bool { return h.ref.Load() != nil }

// kill は Holder を殺し、生きていた場合はそのエントリを返します。
// 同じ Holder に対して非 nil を受け取るのは 1 回だけです。
func (h *Holder[K, V]) kill() Entry[K, V] {
	if r := h.ref.Swap(nil); r != nil {
		return r.e
	}
	return nil
}
