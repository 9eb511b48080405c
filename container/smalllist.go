package container

import "github.com/graniteforge/ecsengine/alloc"

const smallListInline = 4

// SmallList holds up to 4 items inline with no allocation; a 5th and later
// item are stored in an ordinary Go slice on the heap. The optional
// allocator does not hold overflow items: it is only called with a size of
// zero each time that slice is about to grow. It backs the
// TaskComponentQuery small-buffer lists.
type SmallList[T any] struct {
	inline   [smallListInline]T
	n        int
	overflow []T
	alloc    alloc.Allocator
}

// NewSmallList creates an empty SmallList. allocator may be nil; it is only
// consulted once the inline capacity is exceeded.
func NewSmallList[T any](allocator alloc.Allocator) *SmallList[T] {
	return &SmallList[T]{alloc: allocator}
}

// Append adds value to the end of the list.
func (l *SmallList[T]) Append(value T) {
	if l.n < smallListInline {
		l.inline[l.n] = value
		l.n++
		return
	}
	if l.alloc != nil && len(l.overflow) == cap(l.overflow) {
		// Zero-size call only; the overflow slice itself grows on the Go
		// heap, not through the allocator.
		l.alloc.Alloc(0)
	}
	l.overflow = append(l.overflow, value)
	l.n++
}

// Len returns the total number of items, inline plus overflow.
func (l *SmallList[T]) Len() int {
	return l.n
}

// At returns the item at index i.
func (l *SmallList[T]) At(i int) T {
	if i < smallListInline {
		return l.inline[i]
	}
	return l.overflow[i-smallListInline]
}

// Each visits every item in order.
func (l *SmallList[T]) Each(fn func(T)) {
	for i := 0; i < l.n; i++ {
		fn(l.At(i))
	}
}

// Slice materialises the list into a single slice.
func (l *SmallList[T]) Slice() []T {
	out := make([]T, 0, l.n)
	l.Each(func(v T) { out = append(out, v) })
	return out
}
