package audio

import (
	"sync/atomic"

	goaudio "github.com/go-audio/audio"
)

// fullScale is the divisor used to normalize int16 samples to [-1, 1).
const fullScale = 32768.0

// Block is a fixed-capacity buffer of signed 16-bit PCM samples with shared
// ownership. Blocks are created by Pool.Allocate with a single owner; every
// additional consumer takes a reference with Retain and gives it back with
// Release. When the last reference is released the storage returns to the
// pool.
//
// A block may be mutated in place only while it is exclusively owned. Shared
// blocks must go through Writable first.
type Block struct {
	data   []int16
	length int
	refs   int32
	pool   *Pool
}

// Data returns the valid samples of the block. The returned slice aliases the
// block storage: it is valid until the caller's reference is released and
// must not be written unless the caller owns the block exclusively.
func (b *Block) Data() []int16 {
	return b.data[:b.length]
}

// Len returns the number of valid samples.
func (b *Block) Len() int {
	return b.length
}

// Cap returns the block capacity in samples.
func (b *Block) Cap() int {
	return len(b.data)
}

// SetLen sets the number of valid samples, clamped to the block capacity.
func (b *Block) SetLen(n int) {
	if n < 0 {
		n = 0
	}
	if n > len(b.data) {
		n = len(b.data)
	}
	b.length = n
}

// Refs returns the current ownership count. It is a diagnostic snapshot and
// may be stale by the time it is observed.
func (b *Block) Refs() int {
	return int(atomic.LoadInt32(&b.refs))
}

// Retain takes an additional reference to the block. Used when one block is
// distributed to more than one consumer.
func (b *Block) Retain() {
	atomic.AddInt32(&b.refs, 1)
}

// Release gives back one reference. When the count reaches zero the storage
// returns to the pool and the block must not be touched again. Safe to call
// concurrently from multiple goroutines holding separate references.
func (b *Block) Release() {
	if atomic.AddInt32(&b.refs, -1) == 0 {
		b.pool.reclaim(b)
	}
}

// Writable returns a block that the caller owns exclusively and may mutate in
// place. If the caller is the sole owner the receiver is returned unchanged.
// Otherwise the valid samples are deep-copied into a fresh pool block, the
// caller's reference to the original is released, and the copy is returned.
//
// If a copy is needed and the pool is empty, ErrResourceExhausted is
// returned and the caller still holds its reference to the original: it must
// drop the frame (release the original, propagate no output) rather than
// mutate shared data.
func (b *Block) Writable() (*Block, error) {
	if atomic.LoadInt32(&b.refs) == 1 {
		return b, nil
	}
	c, err := b.pool.Allocate()
	if err != nil {
		return nil, err
	}
	copy(c.data, b.data[:b.length])
	c.length = b.length
	b.Release()
	return c, nil
}

// AsFloatBuffer converts the valid samples to a mono go-audio float buffer
// normalized to [-1, 1).
func (b *Block) AsFloatBuffer(sampleRate int) *goaudio.FloatBuffer {
	buf := &goaudio.FloatBuffer{
		Format: &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   make([]float64, b.length),
	}
	for i, s := range b.Data() {
		buf.Data[i] = float64(s) / fullScale
	}
	return buf
}

// AsIntBuffer converts the valid samples to a mono go-audio int buffer.
func (b *Block) AsIntBuffer(sampleRate int) *goaudio.IntBuffer {
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, b.length),
	}
	for i, s := range b.Data() {
		buf.Data[i] = int(s)
	}
	return buf
}
