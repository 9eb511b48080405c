// Package container provides the data structures the entity store and
// scheduler are built on: a stable-index generation-checked pool, a small
// integer-keyed map, and a small-buffer-optimised list.
package container
