// Package pool provides reusable read buffers for streaming object bodies
// into hashers, so concurrent workers do not allocate a chunk per object.
package pool
