package store

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amakane-hakari/sortkv/internal/eviction"
	"github.com/amakane-hakari/sortkv/internal/metrics"
)

func newSortedStore(t testing.TB, maxSize int, opts ...Option) (*Store[string, string], *eviction.Sorted[string, string]) {
	t.Helper()
	p, err := eviction.New[string, string](maxSize)
	require.NoError(t, err)
	return New[string, string](opts...).WithPolicy(p), p
}

func TestStore_SortedEviction(t *testing.T) {
	s, p := newSortedStore(t, 2)

	s.Set("b", "2")
	s.Set("c", "3")
	s.Set("a", "1") // 最小キーの a 自身が追い出される

	_, ok := s.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, s.Len())

	s.Set("d", "4") // b が追い出される
	_, ok = s.Get("b")
	assert.False(t, ok)
	for _, k := range []string{"c", "d"} {
		_, ok := s.Get(k)
		assert.True(t, ok, "%s should remain", k)
	}
	assert.Equal(t, 2, p.CurrentSize())
}

func TestStore_DeleteUntracks(t *testing.T) {
	s, p := newSortedStore(t, 10)
	s.Set("a", "1")
	s.Set("b", "2")
	require.Equal(t, 2, p.CurrentSize())

	s.Delete("a")
	assert.Equal(t, 1, p.CurrentSize())

	s.Delete("missing")
	assert.Equal(t, 1, p.CurrentSize())
}

func TestStore_UpdateKeepsSingleCandidate(t *testing.T) {
	s, p := newSortedStore(t, 10)
	for i := range 5 {
		s.Set("a", fmt.Sprint(i))
	}
	assert.Equal(t, 1, p.CurrentSize())
	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "4", v)
}

func TestStore_PinnedEntryIsRequeued(t *testing.T) {
	t.Run("insertion order", func(t *testing.T) {
		m := metrics.NewSimple()
		p, err := eviction.NewFunc(1, eviction.Insertion[string, string](), eviction.WithMetrics(m))
		require.NoError(t, err)
		s := New[string, string](WithMetrics(m)).WithPolicy(p)

		s.Set("a", "1")
		require.True(t, s.Pin("a"))
		s.Set("b", "2")

		// a は後ろに回され、次の候補の b が追い出される
		_, ok := s.Get("a")
		assert.True(t, ok)
		_, ok = s.Get("b")
		assert.False(t, ok)
		assert.EqualValues(t, 1, m.Requeued.Load())
		assert.EqualValues(t, 1, m.Evicted.Load())
		assert.Equal(t, 1, p.CurrentSize())
	})

	t.Run("key order", func(t *testing.T) {
		m := metrics.NewSimple()
		p, err := eviction.New[string, string](1, eviction.WithMetrics(m))
		require.NoError(t, err)
		s := New[string, string](WithMetrics(m)).WithPolicy(p)

		s.Set("a", "1")
		require.True(t, s.Pin("a"))
		s.Set("b", "2")

		// a は戻されても最小のままなので、1 回の shrink は a の再投入だけで終わる
		assert.Equal(t, 2, s.Len())
		assert.Equal(t, 2, p.CurrentSize())
		assert.EqualValues(t, 2, m.Requeued.Load())
		assert.Zero(t, m.Evicted.Load())

		require.True(t, s.Unpin("a"))
		assert.False(t, s.Unpin("a"), "already unpinned")
		s.Set("c", "3")

		for _, k := range []string{"a", "b"} {
			_, ok := s.Get(k)
			assert.False(t, ok, "%s should be evicted", k)
		}
		_, ok := s.Get("c")
		assert.True(t, ok)
		assert.Equal(t, 1, p.CurrentSize())
		assert.EqualValues(t, 2, m.Evicted.Load())
	})
}

func TestStore_PinMissingKey(t *testing.T) {
	s := New[string, string]()
	assert.False(t, s.Pin("nope"))
	assert.False(t, s.Unpin("nope"))
}

func TestStore_ConcurrentWithPolicy(t *testing.T) {
	const maxSize = 64
	s, p := newSortedStore(t, maxSize)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 1000 {
				k := fmt.Sprintf("k%d", (g*7919+i)%512)
				switch i % 5 {
				case 0:
					s.Delete(k)
				case 1:
					s.Get(k)
				default:
					s.Set(k, "v")
				}
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, p.CurrentSize(), maxSize)
	assert.LessOrEqual(t, s.Len(), maxSize)
	for _, e := range p.Snapshot() {
		v, ok := s.Get(e.Key())
		assert.True(t, ok, "tracked key %s missing from store", e.Key())
		assert.Equal(t, "v", v)
	}
}

func TestStore_Load(t *testing.T) {
	s := New[string, string]()

	var calls atomic.Int32
	fetch := func() (string, error) {
		calls.Add(1)
		return "loaded", nil
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.Load("k", fetch)
			assert.NoError(t, err)
			assert.Equal(t, "loaded", v)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "loaded", v)

	_, err := s.Load("k", func() (string, error) { return "", errors.New("unused") })
	assert.NoError(t, err, "cached value must not call fetch")
}

func TestStore_LoadError(t *testing.T) {
	s := New[string, string]()
	boom := errors.New("boom")

	_, err := s.Load("k", func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	_, ok := s.Get("k")
	assert.False(t, ok, "failed fetch must not be cached")
}
