package metrics

import (
	"sync/atomic"
)

// Interface はメトリクス更新用抽象
type Interface interface {
	IncSetNew()
	IncSetUpdate()
	IncGetHit()
	IncGetMiss()
	AddEvicted(n int)
	AddTTLExpired(n int)
	IncRequeued()
	SetTrackedSize(n int)
}

// Noop は何もしないメトリクス実装
type Noop struct{}

// IncSetNew は何もしないメトリクス実装
func (Noop) IncSetNew() {}

// IncSetUpdate は何もしないメトリクス実装
func (Noop) IncSetUpdate() {}

// IncGetHit は何もしないメトリクス実装
func (Noop) IncGetHit() {}

// IncGetMiss は何もしないメトリクス実装
func (Noop) IncGetMiss() {}

// AddEvicted は何もしないメトリクス実装
func (Noop) AddEvicted(_ int) {}

// AddTTLExpired は何もしないメトリクス実装
func (Noop) AddTTLExpired(_ int) {}

// IncRequeued は何もしないメトリクス実装
func (Noop) IncRequeued() {}

// SetTrackedSize は何もしないメトリクス実装
func (Noop) SetTrackedSize(_ int) {}

// Simple はシンプルなメトリクス実装です。
type Simple struct {
	SetNew      atomic.Uint64
	SetUpdate   atomic.Uint64
	GetHit      atomic.Uint64
	GetMiss     atomic.Uint64
	Evicted     atomic.Uint64
	TTLExpired  atomic.Uint64
	Requeued    atomic.Uint64
	TrackedSize atomic.Uint64
}

// NewSimple は新しい Simple メトリクスを作成します。
func NewSimple() *Simple { return &Simple{} }

// IncSetNew は新しいキーが追加されたことをカウントします。
func (m *Simple) IncSetNew() { m.SetNew.Add(1) }

// IncSetUpdate は既存のキーが更新されたことをカウントします。
func (m *Simple) IncSetUpdate() { m.SetUpdate.Add(1) }

// IncGetHit はキャッシュヒットをカウントします。
func (m *Simple) IncGetHit() { m.GetHit.Add(1) }

// IncGetMiss はキャッシュミスをカウントします。
func (m *Simple) IncGetMiss() { m.GetMiss.Add(1) }

// AddEvicted はエビクションされたアイテムの数を加算します。
func (m *Simple) AddEvicted(n int) {
	if n > 0 {
		m.Evicted.Add(uint64(n))
	}
}

// AddTTLExpired は TTL が期限切れになったアイテムの数を加算します。
func (m *Simple) AddTTLExpired(n int) {
	if n > 0 {
		m.TTLExpired.Add(uint64(n))
	}
}

// IncRequeued は追い出しに失敗して候補に戻されたエントリをカウントします。
func (m *Simple) IncRequeued() { m.Requeued.Add(1) }

// SetTrackedSize はポリシーが追跡中の候補数を設定します。
func (m *Simple) SetTrackedSize(n int) {
	if n >= 0 {
		m.TrackedSize.Store(uint64(n))
	}
}
