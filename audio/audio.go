// Package audio provides the block ownership model and node contract for the
// processing pipeline: pool-backed PCM blocks with atomic shared ownership and
// copy-on-write mutation safety, the Node interface implemented by every
// processing unit, and a Runner for the threaded-per-node execution model.
package audio

import "github.com/rs/xid"

// Node is a processing unit in an audio pipeline.
//
// A node owns its private state exclusively and never shares mutable state
// with another node. Nodes are not safe for concurrent Process calls; each
// node belongs to exactly one processing goroutine.
type Node interface {
	// Process consumes an input block and returns the block to hand to the
	// next stage. Generators accept a nil input. A nil return is the drop
	// signal: the frame is gone and downstream stages must not run.
	//
	// Ownership: the input reference is transferred to the node. A node that
	// does not return the input must release it.
	Process(in *Block) *Block

	// Reset clears internal state so that subsequent output is identical to
	// a freshly constructed node.
	Reset()
}

// NewUID returns a new unique id value.
func NewUID() string {
	return xid.New().String()
}
