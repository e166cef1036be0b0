package eviction

import (
	"cmp"
	"sync/atomic"

	"github.com/amakane-hakari/sortkv/internal/metrics"
)

// DefaultMaxSize はポリシーのデフォルト最大サイズです。
const DefaultMaxSize = 100_000

// Sorted はサイズが最大値を超えたとき、比較関数で最小のエントリから追い出すポリシーです。
// すべてのメソッドは並行に、また Evict からの再入で呼び出せます。
type Sorted[K comparable, V any] struct {
	max      atomic.Int64
	orderCnt atomic.Uint64
	set      *skipSet[*Holder[K, V]]
	cfg      config
}

// New はキーの昇順で追い出す Sorted を作成します。
func New[K cmp.Ordered, V any](maxSize int, opts ...Option) (*Sorted[K, V], error) {
	return NewFunc(maxSize, KeyOrder[K, V](), opts...)
}

// NewFunc は比較関数 compare の順で追い出す Sorted を作成します。
func NewFunc[K comparable, V any](maxSize int, compare CompareFunc[K, V], opts ...Option) (*Sorted[K, V], error) {
	if maxSize <= 0 {
		return nil, maxSizeError(maxSize)
	}
	if compare == nil {
		return nil, ErrNilComparator
	}
	cfg := config{metrics: metrics.Noop{}}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.metrics == nil {
		cfg.metrics = metrics.Noop{}
	}
	p := &Sorted[K, V]{
		set: newSkipSet(holderOrder(compare)),
		cfg: cfg,
	}
	p.max.Store(int64(maxSize))
	return p, nil
}

// MaxSize は追い出しが始まる最大サイズを返します。
func (p *Sorted[K, V]) MaxSize() int { return int(p.max.Load()) }

// SetMaxSize は最大サイズを変更します。0 以下は ErrInvalidMaxSize。
// 縮小は次のアクセスで反映されます。
func (p *Sorted[K, V]) SetMaxSize(maxSize int) error {
	if maxSize <= 0 {
		return maxSizeError(maxSize)
	}
	p.max.Store(int64(maxSize))
	return nil
}

// CurrentSize は追跡中の候補数を返します。
func (p *Sorted[K, V]) CurrentSize() int { return p.set.Len() }

// Snapshot は追跡中のエントリを追い出し順に並べたコピーを返します。
func (p *Sorted[K, V]) Snapshot() []Entry[K, V] {
	out := make([]Entry[K, V], 0, p.set.Len())
	p.set.Range(func(h *Holder[K, V]) bool {
		if e, ok := h.Entry(); ok {
			out = append(out, e)
		}
		return true
	})
	return out
}

// OnAccess はストアからのアクセス (removed=false) と削除 (removed=true) の通知を受け取ります。
func (p *Sorted[K, V]) OnAccess(removed bool, e Entry[K, V]) {
	if removed {
		if h := e.RemoveMeta(); h != nil {
			p.removeHolder(h)
		}
		return
	}
	if !e.IsCached() {
		return
	}
	if p.touch(e) {
		p.shrink()
	}
}

// touch は e を候補として登録し、この呼び出しで候補が増えた場合に true を返します。
func (p *Sorted[K, V]) touch(e Entry[K, V]) bool {
	for {
		if e.Meta() != nil {
			return false
		}

		h := newHolder(e, p.orderCnt.Add(1))
		p.set.Add(h)

		if e.PutMetaIfAbsent(h) != nil {
			// 並行する touch に負けた
			p.removeHolder(h)
			return false
		}
		if h.live() {
			if !e.IsCached() {
				p.removeHolder(h)
				e.RemoveMetaIf(h)
				return false
			}
			return true
		}
		// 登録が終わる前に shrink に取り出された。スロットを取り戻せたらやり直す
		if !e.RemoveMetaIf(h) {
			return false
		}
	}
}

// shrink は候補数が最大サイズ以下になるまで追い出します。
// 1 回の呼び出しで処理するのは開始時点の候補数までなので、追い出せないエントリが
// 残ると最大サイズを超えたまま戻ることがあります。
func (p *Sorted[K, V]) shrink() {
	maxSize := p.MaxSize()
	startSize := p.set.Len()

	var evicted, requeued int
	for i := 0; i < startSize && p.set.Len() > maxSize; i++ {
		h, ok := p.set.PopFirst()
		if !ok {
			break
		}
		e := h.kill()
		if e == nil {
			continue
		}
		if e.Evict() {
			evicted++
			continue
		}
		e.RemoveMetaIf(h)
		p.touch(e)
		requeued++
		p.cfg.metrics.IncRequeued()
		if p.cfg.logger != nil {
			p.cfg.logger.Debug("eviction.requeue", "key", e.Key())
		}
	}

	if p.cfg.logger != nil && evicted+requeued > 0 {
		p.cfg.logger.Debug("eviction.shrink", "evicted", evicted, "requeued", requeued, "size", p.set.Len(), "max", maxSize)
	}
}

func (p *Sorted[K, V]) removeHolder(h *Holder[K, V]) {
	h.kill()
	p.set.Remove(h)
}
