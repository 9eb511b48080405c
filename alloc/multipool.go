package alloc

var _ Allocator = &MultiPool{}

// MultiPool dispatches allocation requests to one of several fixed-size
// Pools by size class, falling back to a plain arena for requests larger
// than the biggest class. This is the "polymorphic allocator... a single
// allocator trait" spec.md's Design Notes call for: callers never see which
// concrete strategy served a request.
type MultiPool struct {
	classes  []*Pool
	overflow *Arena
}

// NewMultiPool builds a MultiPool with one Pool per size class. classes must
// be sorted ascending.
func NewMultiPool(classes []int) *MultiPool {
	mp := &MultiPool{overflow: NewArena(0)}
	for _, c := range classes {
		mp.classes = append(mp.classes, NewPool(c))
	}
	return mp
}

func (mp *MultiPool) classFor(size int) *Pool {
	for _, p := range mp.classes {
		if size <= p.BlockSize() {
			return p
		}
	}
	return nil
}

// Alloc routes the request to the smallest class that fits, or the overflow
// arena if size exceeds every class.
func (mp *MultiPool) Alloc(size int) []byte {
	if p := mp.classFor(size); p != nil {
		return p.Alloc(size)[:size]
	}
	return mp.overflow.Alloc(size)
}

// Free returns a block to the pool whose class matches its capacity. Blocks
// served by the overflow arena cannot be freed individually.
func (mp *MultiPool) Free(block []byte) {
	if p := mp.classFor(cap(block)); p != nil {
		p.Free(block[:cap(block)])
	}
}

// Reset clears every size-class pool and the overflow arena.
func (mp *MultiPool) Reset() {
	for _, p := range mp.classes {
		p.Reset()
	}
	mp.overflow.Reset()
}
