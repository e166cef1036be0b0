package eviction

import "fmt"

type constError string

const (
	// ErrInvalidMaxSize は最大サイズが 0 以下のときに返されます。
	ErrInvalidMaxSize = constError("invalid max size")
	// ErrNilComparator は比較関数が nil のときに返されます。
	ErrNilComparator = constError("nil comparator")
)

func (errStr constError) Error() string { return string(errStr) }

func maxSizeError(n int) error {
	return fmt.Errorf("%w: must be > 0 but %d was requested", ErrInvalidMaxSize, n)
}
