// Package alloc provides the allocator primitives the rest of the engine is
// built on: a bump arena, a fixed-block-size pool, and a multipool that
// dispatches by size class. Allocator identity always flows through explicit
// parameters; there is no hidden thread-local allocator.
package alloc
