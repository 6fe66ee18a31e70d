package node

import (
	"math"
	"sync"

	"github.com/niklasonfire/z-audio-kit/audio"
)

// Volume scales every sample by a factor with hard clipping to the 16-bit
// range. The factor can be updated from any goroutine while the node runs.
type Volume struct {
	mu     sync.Mutex
	factor float64
}

// NewVolume creates a volume transform. A factor of 1.0 is unity gain.
func NewVolume(factor float64) *Volume {
	return &Volume{factor: factor}
}

// SetFactor updates the volume factor.
func (v *Volume) SetFactor(f float64) {
	v.mu.Lock()
	v.factor = f
	v.mu.Unlock()
}

// Factor returns the current volume factor.
func (v *Volume) Factor() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.factor
}

// Process scales the input in place. A shared input is copied first
// (copy-on-write); if the copy cannot be allocated the input is released and
// the frame dropped, so sibling consumers never observe a partial mutation.
func (v *Volume) Process(in *audio.Block) *audio.Block {
	if in == nil {
		return nil
	}
	out, err := in.Writable()
	if err != nil {
		in.Release()
		return nil
	}
	factor := v.Factor()
	data := out.Data()
	for i, s := range data {
		scaled := float64(s) * factor
		if scaled > math.MaxInt16 {
			scaled = math.MaxInt16
		} else if scaled < math.MinInt16 {
			scaled = math.MinInt16
		}
		data[i] = int16(scaled)
	}
	return out
}

// Reset is a no-op: volume is stateless between blocks.
func (v *Volume) Reset() {}
