package vmap

import "github.com/pkg/errors"

// Sentinel errors surfaced to callers. Both indicate operations whose
// per-example semantics cannot be represented by a single unbatched call;
// neither is retryable.
var (
	// ErrBatchedBoolMask is returned when a boolean mask index is itself
	// batched: each example could select a different number of elements, so
	// the per-example results have no common shape.
	ErrBatchedBoolMask = errors.New("vmap: batching over indexing with a boolean mask is not supported")

	// ErrInplaceOnUnbatched is returned when an in-place operation targets a
	// receiver that is not batched while other operands are: the receiver is
	// shared across all examples and cannot be mutated per example.
	ErrInplaceOnUnbatched = errors.New("vmap: in-place operation on an unbatched tensor inside of vmap is not supported")
)
