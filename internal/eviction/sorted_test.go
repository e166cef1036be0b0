package eviction

import (
	"bytes"
	"math/rand/v2"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ilog "github.com/amakane-hakari/sortkv/internal/log"
	"github.com/amakane-hakari/sortkv/internal/metrics"
)

// testEntry はストアの代わりに Evict 成功時に削除通知を返すエントリです。
type testEntry struct {
	MetaSlot[int, string]

	key    int
	cached atomic.Bool
	// 残りの失敗回数。負なら常に失敗する
	failEvicts atomic.Int32
	evicts     atomic.Int32
	policy     *Sorted[int, string]
}

func newTestEntry(p *Sorted[int, string], key int) *testEntry {
	e := &testEntry{key: key, policy: p}
	e.cached.Store(true)
	return e
}

func (e *testEntry) Key() int       { return e.key }
func (e *testEntry) Value() string  { return "v" + strconv.Itoa(e.key) }
func (e *testEntry) IsCached() bool { return e.cached.Load() }

func (e *testEntry) Evict() bool {
	if n := e.failEvicts.Load(); n != 0 {
		if n > 0 {
			e.failEvicts.Add(-1)
		}
		return false
	}
	return e.remove()
}

// remove はストアからの削除を模倣します。
func (e *testEntry) remove() bool {
	if !e.cached.CompareAndSwap(true, false) {
		return false
	}
	e.evicts.Add(1)
	e.policy.OnAccess(true, e)
	return true
}

func newTestPolicy(t *testing.T, maxSize int, opts ...Option) *Sorted[int, string] {
	t.Helper()
	p, err := New[int, string](maxSize, opts...)
	require.NoError(t, err)
	return p
}

func trackedKeys(p *Sorted[int, string]) []int {
	var keys []int
	for _, e := range p.Snapshot() {
		keys = append(keys, e.Key())
	}
	return keys
}

func TestNew_InvalidConfig(t *testing.T) {
	for _, maxSize := range []int{0, -1} {
		t.Run(strconv.Itoa(maxSize), func(t *testing.T) {
			p, err := New[int, string](maxSize)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrInvalidMaxSize)
		})
	}

	t.Run("nil comparator", func(t *testing.T) {
		p, err := NewFunc[int, string](10, nil)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, ErrNilComparator)
	})
}

func TestSorted_SetMaxSize(t *testing.T) {
	p := newTestPolicy(t, 5)
	assert.Equal(t, 5, p.MaxSize())

	assert.ErrorIs(t, p.SetMaxSize(0), ErrInvalidMaxSize)
	assert.Equal(t, 5, p.MaxSize(), "rejected value must not be applied")

	require.NoError(t, p.SetMaxSize(2))
	assert.Equal(t, 2, p.MaxSize())
}

func TestSorted_EvictsMinimumKey(t *testing.T) {
	p := newTestPolicy(t, 3)
	entries := map[int]*testEntry{}
	for _, k := range []int{5, 1, 3, 4, 2} {
		e := newTestEntry(p, k)
		entries[k] = e
		p.OnAccess(false, e)
	}

	assert.Equal(t, []int{3, 4, 5}, trackedKeys(p))
	assert.Equal(t, 3, p.CurrentSize())
	for _, k := range []int{1, 2} {
		assert.False(t, entries[k].IsCached(), "key %d should be evicted", k)
		assert.Nil(t, entries[k].Meta())
	}
	for _, k := range []int{3, 4, 5} {
		assert.True(t, entries[k].IsCached())
		assert.NotNil(t, entries[k].Meta())
	}
}

func TestSorted_EvictionOrderPerStep(t *testing.T) {
	p := newTestPolicy(t, 3)
	var (
		evicted []int
		live    []*testEntry
	)
	for _, k := range []int{5, 1, 3, 4, 2} {
		e := newTestEntry(p, k)
		live = append(live, e)
		p.OnAccess(false, e)

		// 同じ呼び出しで追加と追い出しが起きたエントリも数える
		rest := live[:0]
		for _, le := range live {
			if le.IsCached() {
				rest = append(rest, le)
				continue
			}
			evicted = append(evicted, le.Key())
		}
		live = rest
	}
	assert.Equal(t, []int{1, 2}, evicted)
	assert.Equal(t, []int{3, 4, 5}, trackedKeys(p))
}

func TestSorted_TieBreakIsInsertionOrder(t *testing.T) {
	p, err := NewFunc(100, Insertion[int, string]())
	require.NoError(t, err)

	a := newTestEntry(p, 2)
	b := newTestEntry(p, 1)
	p.OnAccess(false, a)
	p.OnAccess(false, b)

	h, ok := p.set.PopFirst()
	require.True(t, ok)
	e, _ := h.Entry()
	assert.Same(t, a, e)

	h, ok = p.set.PopFirst()
	require.True(t, ok)
	e, _ = h.Entry()
	assert.Same(t, b, e)
}

func TestSorted_RepeatedAccessTracksOnce(t *testing.T) {
	p := newTestPolicy(t, 10)
	e := newTestEntry(p, 1)

	assert.True(t, p.touch(e))
	first := e.Meta()
	assert.False(t, p.touch(e))
	p.OnAccess(false, e)

	assert.Equal(t, 1, p.CurrentSize())
	assert.Same(t, first, e.Meta())
}

func TestSorted_IgnoresAccessToRemovedEntry(t *testing.T) {
	p := newTestPolicy(t, 10)
	e := newTestEntry(p, 1)
	e.cached.Store(false)

	p.OnAccess(false, e)
	assert.Zero(t, p.CurrentSize())
	assert.Nil(t, e.Meta())
}

func TestSorted_Removal(t *testing.T) {
	p := newTestPolicy(t, 10)
	e := newTestEntry(p, 1)
	p.OnAccess(false, e)
	h := e.Meta()
	require.NotNil(t, h)

	require.True(t, e.remove())
	assert.Zero(t, p.CurrentSize())
	assert.Nil(t, e.Meta())
	_, live := h.Entry()
	assert.False(t, live)

	// 既に追跡されていないエントリの削除通知は無害
	p.OnAccess(true, newTestEntry(p, 2))
	assert.Zero(t, p.CurrentSize())
}

func TestSorted_RequeueOnEvictFailure(t *testing.T) {
	m := metrics.NewSimple()
	p, err := NewFunc(1, Insertion[int, string](), WithMetrics(m))
	require.NoError(t, err)

	f := newTestEntry(p, 1)
	f.failEvicts.Store(1)
	g := newTestEntry(p, 2)
	g.failEvicts.Store(-1)

	p.OnAccess(false, f)
	firstOrder := f.Meta().Order()
	// 1 回目の shrink: F も G も追い出せず、開始時のサイズ分で打ち切られる
	p.OnAccess(false, g)

	assert.Equal(t, 2, p.CurrentSize(), "stays above max when nothing can be evicted")
	require.NotNil(t, f.Meta())
	assert.Greater(t, f.Meta().Order(), firstOrder, "requeued with a later order")
	assert.True(t, f.IsCached())
	assert.EqualValues(t, 2, m.Requeued.Load())

	// 2 回目の shrink で F が追い出される
	p.shrink()

	assert.False(t, f.IsCached())
	assert.Nil(t, f.Meta())
	assert.Equal(t, 1, p.CurrentSize())
	assert.Equal(t, []int{2}, trackedKeys(p))
}

func TestSorted_PinnedEntryStaysTrackable(t *testing.T) {
	p := newTestPolicy(t, 1)
	pinned := newTestEntry(p, 0)
	pinned.failEvicts.Store(-1)
	p.OnAccess(false, pinned)

	for k := 1; k <= 50; k++ {
		p.OnAccess(false, newTestEntry(p, k))

		h := pinned.Meta()
		require.NotNil(t, h, "pass %d left the slot empty", k)
		e, live := h.Entry()
		require.True(t, live, "pass %d left a dead holder in the slot", k)
		require.Same(t, pinned, e)
	}
	assert.True(t, pinned.IsCached())
	assert.Contains(t, trackedKeys(p), 0)
}

func TestSorted_SnapshotIsCopy(t *testing.T) {
	p := newTestPolicy(t, 10)
	for _, k := range []int{3, 1, 2} {
		p.OnAccess(false, newTestEntry(p, k))
	}
	snap := p.Snapshot()
	require.Len(t, snap, 3)
	snap[0] = nil

	assert.Equal(t, []int{1, 2, 3}, trackedKeys(p))
}

func TestSorted_ConcurrentTouchSameEntry(t *testing.T) {
	const goroutines = 16
	for round := range 50 {
		p := newTestPolicy(t, 1)
		e := newTestEntry(p, round)

		var (
			start sync.WaitGroup
			wg    sync.WaitGroup
			added atomic.Int32
		)
		start.Add(1)
		for range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				start.Wait()
				if p.touch(e) {
					added.Add(1)
				}
			}()
		}
		start.Done()
		wg.Wait()

		require.EqualValues(t, 1, added.Load(), "round %d", round)
		require.Equal(t, 1, p.CurrentSize(), "round %d", round)
		require.Equal(t, []int{round}, trackedKeys(p))
	}
}

// slot はストアのキー 1 つ分を模倣します。削除されると新しいエントリに置き換わります。
type slot struct {
	e atomic.Pointer[testEntry]
}

func TestSorted_ConcurrentChurn(t *testing.T) {
	const (
		maxSize    = 16
		keys       = 64
		goroutines = 8
		ops        = 3000
	)
	p := newTestPolicy(t, maxSize)
	slots := make([]slot, keys)
	for k := range slots {
		slots[k].e.Store(newTestEntry(p, k))
	}

	var wg sync.WaitGroup
	for g := range goroutines {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			r := rand.New(rand.NewPCG(seed, seed*31+7))
			for range ops {
				k := r.IntN(keys)
				cur := slots[k].e.Load()
				switch r.IntN(10) {
				case 0:
					cur.remove()
				case 1:
					if !cur.IsCached() {
						slots[k].e.CompareAndSwap(cur, newTestEntry(p, k))
					}
				default:
					p.OnAccess(false, cur)
				}
			}
		}(uint64(g + 1))
	}
	wg.Wait()

	// 静止後: 生きているエントリにもう一度アクセスする
	for k := range slots {
		if e := slots[k].e.Load(); e.IsCached() {
			p.OnAccess(false, e)
		}
	}

	inSet := map[*Holder[int, string]]bool{}
	perEntry := map[Entry[int, string]]int{}
	p.set.Range(func(h *Holder[int, string]) bool {
		inSet[h] = true
		if e, ok := h.Entry(); ok {
			perEntry[e]++
		}
		return true
	})

	assert.Equal(t, len(inSet), p.CurrentSize())
	assert.LessOrEqual(t, p.CurrentSize(), maxSize)
	for h := range inSet {
		_, live := h.Entry()
		require.True(t, live, "dead holder left in the set")
	}
	for e, n := range perEntry {
		require.Equal(t, 1, n, "key %d has %d live holders", e.Key(), n)
		require.Same(t, e.Meta(), firstHolder(p, e))
	}
	for k := range slots {
		e := slots[k].e.Load()
		if !e.IsCached() {
			continue
		}
		h := e.Meta()
		require.NotNil(t, h, "live key %d is untracked", k)
		_, live := h.Entry()
		require.True(t, live, "live key %d points at a dead holder", k)
		require.True(t, inSet[h], "live key %d holder is not in the set", k)
	}
}

func firstHolder(p *Sorted[int, string], e Entry[int, string]) *Holder[int, string] {
	var found *Holder[int, string]
	p.set.Range(func(h *Holder[int, string]) bool {
		if he, ok := h.Entry(); ok && he == e {
			found = h
			return false
		}
		return true
	})
	return found
}

func TestSorted_CapacityConvergesUnderConcurrency(t *testing.T) {
	const (
		maxSize    = 32
		goroutines = 8
		perG       = 500
	)
	p := newTestPolicy(t, maxSize)

	var wg sync.WaitGroup
	for g := range goroutines {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range perG {
				p.OnAccess(false, newTestEntry(p, g*perG+i))
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, p.CurrentSize(), maxSize)
	assert.Len(t, p.Snapshot(), p.CurrentSize())
}

func TestSorted_LogsShrink(t *testing.T) {
	var buf bytes.Buffer
	p := newTestPolicy(t, 1, WithLogger(ilog.NewWriter(&buf, "debug")))

	pinned := newTestEntry(p, 1)
	pinned.failEvicts.Store(1)
	p.OnAccess(false, pinned)
	p.OnAccess(false, newTestEntry(p, 2))

	out := buf.String()
	assert.Contains(t, out, "msg=eviction.requeue key=1")
	assert.Contains(t, out, "msg=eviction.shrink")
	assert.Contains(t, out, "evicted=1")
	assert.Contains(t, out, "requeued=1")
}
