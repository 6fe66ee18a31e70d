// Package mixer sums the outputs of several channel strips into one signal
// and routes the sum through an optional master strip. Every channel receives
// its own copy of the input block, so channels are fully isolated from each
// other's mutations.
package mixer

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/niklasonfire/z-audio-kit/audio"
	"github.com/niklasonfire/z-audio-kit/log"
	"github.com/niklasonfire/z-audio-kit/strip"
)

// MaxChannels bounds the number of channel strips of a single mixer.
const MaxChannels = 32

// defaultQueueDepth is the input queue capacity.
const defaultQueueDepth = 4

// Mixer fans an input block out to its channel strips in lockstep, sums the
// surviving outputs with saturation and folds the sum through the master
// strip. Configure channels and master before Start.
type Mixer struct {
	uid  string
	log  *logrus.Logger
	pool *audio.Pool

	mu       sync.Mutex
	channels []*strip.Strip
	master   *strip.Strip

	in  chan *audio.Block
	out chan<- *audio.Block

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a mixer drawing its working blocks from pool.
func New(pool *audio.Pool) *Mixer {
	return &Mixer{
		uid:  audio.NewUID(),
		log:  log.GetLogger(),
		pool: pool,
		in:   make(chan *audio.Block, defaultQueueDepth),
	}
}

// ID returns the mixer's unique identifier.
func (m *Mixer) ID() string { return m.uid }

// AddChannel registers a channel strip and returns its index. Fails with
// ErrCapacityExceeded beyond MaxChannels.
func (m *Mixer) AddChannel(s *strip.Strip) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.channels) >= MaxChannels {
		return 0, fmt.Errorf("mixer: %w", audio.ErrCapacityExceeded)
	}
	m.channels = append(m.channels, s)
	return len(m.channels) - 1, nil
}

// Channels returns the number of registered channel strips.
func (m *Mixer) Channels() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.channels)
}

// SetMaster sets the strip the mixed sum is folded through. A nil master
// passes the sum straight to the output.
func (m *Mixer) SetMaster(s *strip.Strip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.master = s
}

// SetOutput sets the queue that mixed blocks are pushed to.
func (m *Mixer) SetOutput(out chan<- *audio.Block) {
	m.out = out
}

// In returns the mixer's input queue for direct wiring.
func (m *Mixer) In() chan<- *audio.Block { return m.in }

// ProcessBlock runs one lockstep mix cycle. Each channel strip processes a
// private copy of the input; the surviving outputs are summed sample by
// sample with saturation at the int16 bounds, and the sum is folded through
// the master strip. With no channels the input passes through untouched.
//
// A failed accumulator allocation drops the whole frame. A failed per-channel
// copy skips only that channel, degrading the mix instead of dropping it.
func (m *Mixer) ProcessBlock(in *audio.Block) *audio.Block {
	if in == nil {
		return nil
	}
	if len(m.channels) == 0 {
		return in
	}

	acc, err := m.pool.Allocate()
	if err != nil {
		m.log.Debug("mixer: pool exhausted, frame dropped")
		in.Release()
		return nil
	}
	acc.SetLen(in.Len())

	for i, ch := range m.channels {
		// TODO: skip the copy for the last channel and hand it the input
		// block directly once ownership accounting covers that path.
		cp, err := m.pool.Allocate()
		if err != nil {
			m.log.WithField("channel", i).Debug("mixer: pool exhausted, channel skipped")
			continue
		}
		copy(cp.Data(), in.Data())
		cp.SetLen(in.Len())

		out := ch.ProcessBlock(cp)
		if out == nil {
			continue
		}
		sum(acc, out)
		out.Release()
	}
	in.Release()

	if m.master != nil {
		return m.master.ProcessBlock(acc)
	}
	return acc
}

// sum adds src into dst over their common length, saturating at the int16
// bounds.
func sum(dst, src *audio.Block) {
	d, s := dst.Data(), src.Data()
	n := len(d)
	if len(s) < n {
		n = len(s)
	}
	for i := 0; i < n; i++ {
		v := int32(d[i]) + int32(s[i])
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		d[i] = int16(v)
	}
}

// Reset resets every channel strip and the master.
func (m *Mixer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.channels {
		ch.Reset()
	}
	if m.master != nil {
		m.master.Reset()
	}
}

// Start launches the mixing goroutine. Fails with ErrInvalidState if the
// mixer is already running.
func (m *Mixer) Start(ctx context.Context) error {
	if m.done != nil {
		return fmt.Errorf("mixer already running: %w", audio.ErrInvalidState)
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.log.WithFields(logrus.Fields{
		"uid":      m.uid,
		"channels": m.Channels(),
	}).Debug("mixer: started")
	go m.loop(ctx)
	return nil
}

func (m *Mixer) loop(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			return
		case b := <-m.in:
			out := m.ProcessBlock(b)
			if out == nil {
				continue
			}
			if m.out == nil {
				out.Release()
				continue
			}
			select {
			case m.out <- out:
			case <-ctx.Done():
				out.Release()
				return
			}
		}
	}
}

// Stop cancels the mixing goroutine and waits for it to exit. Fails with
// ErrInvalidState if the mixer is not running.
func (m *Mixer) Stop() error {
	if m.done == nil {
		return fmt.Errorf("mixer not running: %w", audio.ErrInvalidState)
	}
	m.cancel()
	<-m.done
	m.cancel = nil
	m.done = nil
	m.log.Debug("mixer: stopped")
	return nil
}

// PushInput enqueues a block for the mixing goroutine, blocking while the
// queue is full. Ownership transfers to the mixer.
func (m *Mixer) PushInput(b *audio.Block) {
	m.in <- b
}
