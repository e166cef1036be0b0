package eviction

import "github.com/zhangyunhao116/skipset"

// skipSet は要素を比較関数の順に保持する並行集合です。
// 要素は互いに異なること（比較結果 0 は同一要素）を前提とします。
type skipSet[T any] struct {
	s *skipset.FuncSet[T]
}

func newSkipSet[T any](cmp func(a, b T) int) *skipSet[T] {
	return &skipSet[T]{
		s: skipset.NewFunc[T](func(a, b T) bool { return cmp(a, b) < 0 }),
	}
}

// Add は v を挿入します。同じ要素が既に存在する場合は false。
func (s *skipSet[T]) Add(v T) bool { return s.s.Add(v) }

// Remove は v を削除します。存在しない、または他で削除済みなら false。
func (s *skipSet[T]) Remove(v T) bool { return s.s.Remove(v) }

// PopFirst は最小の要素を取り出します。空なら false。
func (s *skipSet[T]) PopFirst() (T, bool) {
	for {
		v, ok := s.first()
		if !ok {
			return v, false
		}
		// 他の取り出しに負けたら次の先頭で再試行
		if s.s.Remove(v) {
			return v, true
		}
	}
}

func (s *skipSet[T]) first() (T, bool) {
	var (
		v     T
		found bool
	)
	s.s.Range(func(x T) bool {
		v, found = x, true
		return false
	})
	return v, found
}

// Len は要素数を返します。
func (s *skipSet[T]) Len() int { return s.s.Len() }

// Range は要素を昇順に f へ渡します。f が false を返すと止まります。
// 走査中の変更は反映される場合とされない場合があります。
func (s *skipSet[T]) Range(f func(v T) bool) { s.s.Range(f) }
