// Package eviction はストアのエントリに対する並び替えベースのエビクションポリシーを提供します。
//
// ポリシーはストアからのアクセス/削除通知だけで動作し、エントリ自身が持つメタデータスロットに
// Holder を保持します。グローバルロックは持ちません。
package eviction

import "sync/atomic"

// Entry はポリシーがストアのエントリに要求する操作です。
type Entry[K comparable, V any] interface {
	Key() K
	Value() V
	// IsCached はエントリがまだストアに存在するかを返します。
	IsCached() bool
	// Evict はエントリをストアから追い出します。ピン留めや競合で失敗した場合は false。
	// 成功時、ストアは OnAccess(true, e) を呼び出すこと。
	Evict() bool

	Meta() *Holder[K, V]
	// PutMetaIfAbsent はスロットが空のときだけ h を格納し、直前の値を返します。
	PutMetaIfAbsent(h *Holder[K, V]) *Holder[K, V]
	RemoveMeta() *Holder[K, V]
	// RemoveMetaIf はスロットが h を保持している場合だけクリアします。
	RemoveMetaIf(h *Holder[K, V]) bool
}

// Policy はストアから通知を受け取るエビクションポリシーです。
type Policy[K comparable, V any] interface {
	OnAccess(removed bool, e Entry[K, V])
}

// MetaSlot は Entry のメタデータ操作の実装です。ストアのエントリに埋め込んで使います。
// ゼロ値は空のスロットです。
type MetaSlot[K comparable, V any] struct {
	p atomic.Pointer[Holder[K, V]]
}

// Meta は現在の Holder を返します。
func (s *MetaSlot[K, V]) Meta() *Holder[K, V] { return s.p.Load() }

// PutMetaIfAbsent はスロットが空のときだけ h を格納します。
func (s *MetaSlot[K, V]) PutMetaIfAbsent(h *Holder[K, V]) *Holder[K, V] {
	for {
		if s.p.CompareAndSwap(nil, h) {
			return nil
		}
		if prev := s.p.Load(); prev != nil {
			return prev
		}
	}
}

// RemoveMeta はスロットをクリアし、直前の Holder を返します。
func (s *MetaSlot[K, V]) RemoveMeta() *Holder[K, V] { return s.p.Swap(nil) }

// RemoveMetaIf はスロットが h を保持している場合だけクリアします。
func (s *MetaSlot[K, V]) RemoveMetaIf(h *Holder[K, V]) bool {
	return h != nil && s.p.CompareAndSwap(h, nil)
}
