package node

import (
	"math"
	"sync"

	"github.com/niklasonfire/z-audio-kit/audio"
)

// dbFloor is the level reported for silence.
const dbFloor = -100.0

// Stats is a snapshot of the analyzer's level measurements.
type Stats struct {
	// RMSDB is the smoothed RMS level in dBFS.
	RMSDB float64
	// PeakDB is the peak level of the last block in dBFS.
	PeakDB float64
	// Clipping reports whether any sample of the last block hit the min/max
	// of the 16-bit range.
	Clipping bool
}

// Analyzer is a pass-through metering node. It computes smoothed RMS and peak
// levels without modifying the stream and publishes them as a snapshot that
// any goroutine may read while the node keeps processing.
type Analyzer struct {
	smoothing float64
	rms       float64 // leaky-integrated linear RMS, processing goroutine only

	mu    sync.RWMutex
	stats Stats
}

// NewAnalyzer creates a metering node. smoothing is the leaky-integrator
// coefficient in [0, 1): 0 disables smoothing, values near 1 smooth heavily.
func NewAnalyzer(smoothing float64) *Analyzer {
	if smoothing < 0 || smoothing >= 1 {
		smoothing = 0
	}
	return &Analyzer{
		smoothing: smoothing,
		stats:     Stats{RMSDB: dbFloor, PeakDB: dbFloor},
	}
}

func linearToDB(v float64) float64 {
	if v <= 1e-5 {
		return dbFloor
	}
	return 20 * math.Log10(v)
}

// Process analyzes the block and returns it unchanged.
func (a *Analyzer) Process(in *audio.Block) *audio.Block {
	if in == nil {
		return nil
	}
	data := in.Data()
	var peak int
	clipped := false
	if len(data) > 0 {
		var sumSq float64
		for _, s := range data {
			abs := int(s)
			if abs < 0 {
				abs = -abs
			}
			if abs > peak {
				peak = abs
			}
			if s == math.MaxInt16 || s == math.MinInt16 {
				clipped = true
			}
			norm := float64(s) / 32768.0
			sumSq += norm * norm
		}
		inst := math.Sqrt(sumSq / float64(len(data)))
		a.rms = a.rms*a.smoothing + inst*(1-a.smoothing)
	}

	a.mu.Lock()
	a.stats = Stats{
		RMSDB:    linearToDB(a.rms),
		PeakDB:   linearToDB(float64(peak) / 32768.0),
		Clipping: clipped,
	}
	a.mu.Unlock()

	return in
}

// Stats returns the latest published measurements. Safe to call from any
// goroutine.
func (a *Analyzer) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}

// Reset clears the smoothed level and published stats.
func (a *Analyzer) Reset() {
	a.rms = 0
	a.mu.Lock()
	a.stats = Stats{RMSDB: dbFloor, PeakDB: dbFloor}
	a.mu.Unlock()
}
