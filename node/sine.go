package node

import (
	"math"

	"github.com/niklasonfire/z-audio-kit/audio"
)

// Sine generates a sine tone. It is a generator: any input block is released
// and a freshly allocated block is produced from the phase accumulator.
type Sine struct {
	pool  *audio.Pool
	amp   float64
	inc   float64
	phase float64
}

// NewSine creates a sine generator at the given frequency and amplitude.
// Amplitude is relative to full scale; the reference examples use 0.5.
func NewSine(pool *audio.Pool, sampleRate int, freq, amp float64) *Sine {
	return &Sine{
		pool: pool,
		amp:  amp,
		inc:  2 * math.Pi * freq / float64(sampleRate),
	}
}

// Process releases in, if any, and returns a new block of samples. When the
// pool is exhausted the frame is dropped and nil is returned.
func (s *Sine) Process(in *audio.Block) *audio.Block {
	if in != nil {
		in.Release()
	}
	out, err := s.pool.Allocate()
	if err != nil {
		return nil
	}
	data := out.Data()
	for i := range data {
		data[i] = int16(math.Sin(s.phase) * s.amp * math.MaxInt16)
		s.phase += s.inc
		if s.phase >= 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}
	return out
}

// Reset zeroes the phase accumulator, making subsequent output bit-identical
// to a freshly constructed generator.
func (s *Sine) Reset() {
	s.phase = 0
}
