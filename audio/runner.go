package audio

import "context"

// defaultQueueDepth is the input queue capacity of a runner when none is
// requested.
const defaultQueueDepth = 4

// Runner executes a single node in its own goroutine: blocking dequeue from
// the input queue, process, push to the configured output queue, or release
// the result when no output is connected. The only suspension points are the
// queue operations; processing itself never blocks.
//
// Runners are wired into chains by connecting one runner's output to the next
// runner's input queue.
type Runner struct {
	node Node
	in   chan *Block
	out  chan<- *Block
}

// NewRunner wraps a node for threaded execution. queueDepth bounds the input
// queue; values below one fall back to the default depth.
func NewRunner(node Node, queueDepth int) *Runner {
	if queueDepth < 1 {
		queueDepth = defaultQueueDepth
	}
	return &Runner{
		node: node,
		in:   make(chan *Block, queueDepth),
	}
}

// In returns the runner's input queue. Producers block when the queue is
// full.
func (r *Runner) In() chan<- *Block {
	return r.in
}

// SetOutput connects the runner's output queue. Must be called before Run.
// Without an output, processed blocks are released.
func (r *Runner) SetOutput(out chan<- *Block) {
	r.out = out
}

// Run starts the node loop and returns its error channel. The channel is
// closed when the loop exits after ctx is cancelled.
//
// A block dequeued but not yet pushed downstream at cancellation time is
// released by the loop; blocks left in the input queue are not drained.
func (r *Runner) Run(ctx context.Context) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for {
			select {
			case <-ctx.Done():
				return
			case b := <-r.in:
				out := r.node.Process(b)
				if out == nil {
					continue
				}
				if r.out == nil {
					out.Release()
					continue
				}
				select {
				case r.out <- out:
				case <-ctx.Done():
					out.Release()
					return
				}
			}
		}
	}()
	return errc
}
