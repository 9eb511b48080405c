package alloc

// Allocator hands out byte blocks and reclaims them. Implementations need not
// be thread-safe; callers that share an allocator across goroutines must
// synchronise externally (per-worker scratch allocators are the intended
// concurrent usage pattern, not a shared allocator).
type Allocator interface {
	// Alloc returns a zeroed block of at least size bytes.
	Alloc(size int) []byte
	// Free returns a block previously obtained from Alloc. Implementations
	// that cannot reclaim individual blocks (e.g. Arena) may treat this as a
	// no-op; callers must not use block after calling Free.
	Free(block []byte)
	// Reset releases every block handed out so far, invalidating them all.
	Reset()
}
