package node

import "github.com/niklasonfire/z-audio-kit/audio"

// maxSplitOutputs bounds the fan-out of a single splitter.
const maxSplitOutputs = 4

// Splitter fans one block out to several destination queues without copying
// sample data: the block is retained once per additional destination and the
// same block is sent to every queue. Downstream consumers that mutate the
// block must go through Writable first, or they would corrupt the view seen
// by their siblings.
type Splitter struct {
	outputs []chan<- *audio.Block
}

// NewSplitter creates a splitter with no destinations.
func NewSplitter() *Splitter {
	return &Splitter{}
}

// AddOutput registers a destination queue. Fails with ErrCapacityExceeded
// beyond the fan-out bound.
func (s *Splitter) AddOutput(out chan<- *audio.Block) error {
	if len(s.outputs) >= maxSplitOutputs {
		return audio.ErrCapacityExceeded
	}
	s.outputs = append(s.outputs, out)
	return nil
}

// Process distributes the block to all destinations and returns nil: the
// splitter is terminal within its own chain. With no destinations the block
// is released. Sends block when a destination queue is full.
func (s *Splitter) Process(in *audio.Block) *audio.Block {
	if in == nil {
		return nil
	}
	if len(s.outputs) == 0 {
		in.Release()
		return nil
	}
	// One reference is already held; take N-1 more so every destination owns
	// one.
	for i := 1; i < len(s.outputs); i++ {
		in.Retain()
	}
	for _, out := range s.outputs {
		out <- in
	}
	return nil
}

// Reset is a no-op.
func (s *Splitter) Reset() {}
