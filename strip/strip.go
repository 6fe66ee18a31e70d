// Package strip implements a channel strip: an ordered chain of nodes that
// processes blocks sequentially in a single goroutine. A strip can be driven
// synchronously through ProcessBlock or run threaded with Start, pulling
// blocks from its input queue.
package strip

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/niklasonfire/z-audio-kit/audio"
	"github.com/niklasonfire/z-audio-kit/log"
)

// MaxNodes bounds the chain length of a single strip.
const MaxNodes = 16

// defaultQueueDepth is the input queue capacity.
const defaultQueueDepth = 4

// Strip is an ordered node chain with an input queue and an optional output
// queue. Configure the chain before Start; AddNode, Clear and SetOutput are
// not safe against a running strip.
type Strip struct {
	uid  string
	name string
	log  *logrus.Logger

	mu    sync.Mutex
	nodes []audio.Node

	in  chan *audio.Block
	out chan<- *audio.Block

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an empty named strip.
func New(name string) *Strip {
	return &Strip{
		uid:  audio.NewUID(),
		name: name,
		log:  log.GetLogger(),
		in:   make(chan *audio.Block, defaultQueueDepth),
	}
}

// ID returns the strip's unique identifier.
func (s *Strip) ID() string { return s.uid }

// Name returns the strip's name.
func (s *Strip) Name() string { return s.name }

// AddNode appends a node to the chain. Fails with ErrCapacityExceeded beyond
// MaxNodes.
func (s *Strip) AddNode(n audio.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.nodes) >= MaxNodes {
		return fmt.Errorf("strip %s: %w", s.name, audio.ErrCapacityExceeded)
	}
	s.nodes = append(s.nodes, n)
	return nil
}

// Clear removes all nodes from the chain.
func (s *Strip) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = nil
}

// Len returns the number of nodes in the chain.
func (s *Strip) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// SetOutput sets the queue that processed blocks are pushed to. Without an
// output, processed blocks are released.
func (s *Strip) SetOutput(out chan<- *audio.Block) {
	s.out = out
}

// In returns the strip's input queue for direct wiring.
func (s *Strip) In() chan<- *audio.Block { return s.in }

// ProcessBlock folds the block through the chain in order. A node returning
// nil short-circuits the chain: the signal was dropped or consumed and nil is
// returned. Ownership of in transfers to the strip.
func (s *Strip) ProcessBlock(in *audio.Block) *audio.Block {
	b := in
	for _, n := range s.nodes {
		b = n.Process(b)
		if b == nil {
			return nil
		}
	}
	return b
}

// Reset resets every node in the chain.
func (s *Strip) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.nodes {
		n.Reset()
	}
}

// Start launches the processing goroutine. It dequeues blocks from the input
// queue, folds them through the chain and pushes survivors to the output
// queue. Fails with ErrInvalidState if the strip is already running.
func (s *Strip) Start(ctx context.Context) error {
	if s.done != nil {
		return fmt.Errorf("strip %s already running: %w", s.name, audio.ErrInvalidState)
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.log.WithFields(logrus.Fields{
		"strip": s.name,
		"uid":   s.uid,
		"nodes": s.Len(),
	}).Debug("strip: started")
	go s.loop(ctx)
	return nil
}

func (s *Strip) loop(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case b := <-s.in:
			out := s.ProcessBlock(b)
			if out == nil {
				continue
			}
			if s.out == nil {
				out.Release()
				continue
			}
			select {
			case s.out <- out:
			case <-ctx.Done():
				out.Release()
				return
			}
		}
	}
}

// Stop cancels the processing goroutine and waits for it to exit. Fails with
// ErrInvalidState if the strip is not running. Blocks left in the input
// queue keep their references; callers that need them back must drain the
// queue.
func (s *Strip) Stop() error {
	if s.done == nil {
		return fmt.Errorf("strip %s not running: %w", s.name, audio.ErrInvalidState)
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	s.log.WithField("strip", s.name).Debug("strip: stopped")
	return nil
}

// PushInput enqueues a block for the processing goroutine, blocking while
// the queue is full. Ownership transfers to the strip.
func (s *Strip) PushInput(b *audio.Block) {
	s.in <- b
}
