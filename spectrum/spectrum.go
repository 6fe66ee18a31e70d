// Package spectrum provides a windowed spectrum analyzer node: an
// accumulate-then-transform FFT with configurable overlap, window function
// and output formats. The node is a pure pass-through; results are published
// as snapshots that any goroutine may query while processing continues.
package spectrum

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/niklasonfire/z-audio-kit/audio"
)

// MaxFFTSize bounds the analyzer configuration.
const MaxFFTSize = 2048

// defaultFloorDB is the magnitude floor applied in dB conversion when the
// configuration leaves it unset.
const defaultFloorDB = -100.0

// Config holds the spectrum analyzer configuration.
type Config struct {
	// FFTSize is the transform size in samples. Must be a power of two, at
	// least 2 and at most MaxFFTSize.
	FFTSize int
	// HopSize is the analysis advance in samples. 0 means non-overlapping:
	// the accumulation buffer fully resets after each transform. A hop
	// smaller than FFTSize retains the last FFTSize-HopSize samples as
	// overlap, increasing the update rate.
	HopSize int
	// Window selects the frame weighting. Zero value is Rectangular.
	Window Window
	// ComputePhase enables the phase spectrum.
	ComputePhase bool
	// MagnitudeFloorDB floors magnitudes in dB conversion. 0 selects the
	// default of -100 dB.
	MagnitudeFloorDB float64
	// SampleRate is used to convert bins to frequencies.
	SampleRate int
	// Backend overrides the FFT implementation. Nil selects the accelerated
	// backend, falling back to the portable one.
	Backend Backend
}

// Analyzer accumulates incoming samples until a full FFT frame is available,
// transforms it, and retains the configured overlap for the next frame. It
// implements audio.Node and always returns its input unchanged.
type Analyzer struct {
	cfg     Config
	window  []float64
	backend Backend

	// Accumulation state, owned by the processing goroutine.
	buf   []int16
	pos   int
	input []float64
	freq  []complex128

	// Published results, guarded by mu so accessors may run on any
	// goroutine.
	mu           sync.RWMutex
	magnitude    []float64
	phase        []float64
	ready        bool
	processCount uint32
	peakFreq     float64
	peakMag      float64
}

// New creates a spectrum analyzer. Configuration is validated synchronously:
// a FFTSize that is not a power of two, or out of bounds, or a non-positive
// SampleRate fail with ErrInvalidConfig. Window coefficients are computed
// once.
func New(cfg Config) (*Analyzer, error) {
	if cfg.FFTSize < 2 || cfg.FFTSize > MaxFFTSize || cfg.FFTSize&(cfg.FFTSize-1) != 0 {
		return nil, fmt.Errorf("fft size %d: %w", cfg.FFTSize, audio.ErrInvalidConfig)
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate %d: %w", cfg.SampleRate, audio.ErrInvalidConfig)
	}
	if cfg.HopSize < 0 {
		return nil, fmt.Errorf("hop size %d: %w", cfg.HopSize, audio.ErrInvalidConfig)
	}
	if cfg.MagnitudeFloorDB == 0 {
		cfg.MagnitudeFloorDB = defaultFloorDB
	}
	backend := cfg.Backend
	if backend == nil {
		var err error
		backend, err = Accelerated(cfg.FFTSize)
		if err != nil {
			backend = Portable(cfg.FFTSize)
		}
	}
	a := &Analyzer{
		cfg:       cfg,
		window:    coefficients(cfg.Window, cfg.FFTSize),
		backend:   backend,
		buf:       make([]int16, cfg.FFTSize),
		input:     make([]float64, cfg.FFTSize),
		freq:      make([]complex128, cfg.FFTSize/2+1),
		magnitude: make([]float64, cfg.FFTSize/2),
	}
	if cfg.ComputePhase {
		a.phase = make([]float64, cfg.FFTSize/2)
	}
	return a, nil
}

// Process accumulates the block's samples and transforms once a full frame
// is available. The input block is always returned unchanged: analysis is
// non-destructive. Samples beyond the frame boundary within a single call
// are discarded.
func (a *Analyzer) Process(in *audio.Block) *audio.Block {
	if in == nil {
		return nil
	}
	data := in.Data()
	if space := len(a.buf) - a.pos; len(data) > space {
		data = data[:space]
	}
	copy(a.buf[a.pos:], data)
	a.pos += len(data)

	if a.pos >= a.cfg.FFTSize {
		a.transform()

		hop := a.cfg.HopSize
		if hop == 0 {
			hop = a.cfg.FFTSize
		}
		if hop < a.cfg.FFTSize {
			// Slide the retained overlap to the buffer head.
			copy(a.buf, a.buf[hop:])
			a.pos = a.cfg.FFTSize - hop
		} else {
			a.pos = 0
		}
	}
	return in
}

// transform runs one FFT over the accumulated frame and publishes the
// results.
func (a *Analyzer) transform() {
	n := a.cfg.FFTSize
	for i, s := range a.buf {
		a.input[i] = float64(s) / 32768.0 * a.window[i]
	}
	a.backend.Transform(a.freq, a.input)

	bins := n / 2
	a.mu.Lock()
	defer a.mu.Unlock()

	peakBin := 0
	for k := 0; k < bins; k++ {
		mag := cmplx.Abs(a.freq[k]) / float64(n)
		if k > 0 {
			// One-sided scale: energy of the mirrored negative-frequency
			// bins is folded in, so a sine reads as its amplitude.
			mag *= 2
		}
		a.magnitude[k] = mag
		if a.phase != nil {
			a.phase[k] = math.Atan2(imag(a.freq[k]), real(a.freq[k]))
		}
		if k > 0 && (peakBin == 0 || mag > a.magnitude[peakBin]) {
			peakBin = k
		}
	}
	if peakBin > 0 {
		a.peakMag = a.magnitude[peakBin]
		a.peakFreq = BinToFreq(peakBin, n, a.cfg.SampleRate)
	}
	a.ready = true
	a.processCount++
}

// Spectrum returns a copy of the last magnitude spectrum (FFTSize/2 bins).
// Fails with ErrNotReady before the first completed transform.
func (a *Analyzer) Spectrum() ([]float64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.ready {
		return nil, audio.ErrNotReady
	}
	out := make([]float64, len(a.magnitude))
	copy(out, a.magnitude)
	return out, nil
}

// SpectrumDB returns the last magnitude spectrum in dB relative to
// reference: 20*log10(max(magnitude, floor)/reference).
func (a *Analyzer) SpectrumDB(reference float64) ([]float64, error) {
	if reference <= 0 {
		return nil, fmt.Errorf("reference %v: %w", reference, audio.ErrInvalidConfig)
	}
	floor := math.Pow(10, a.cfg.MagnitudeFloorDB/20)
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.ready {
		return nil, audio.ErrNotReady
	}
	out := make([]float64, len(a.magnitude))
	for i, m := range a.magnitude {
		if m < floor {
			m = floor
		}
		out[i] = 20 * math.Log10(m/reference)
	}
	return out, nil
}

// Phase returns a copy of the last phase spectrum. Fails with
// ErrNotSupported when phase computation was not enabled at construction,
// and with ErrNotReady before the first completed transform.
func (a *Analyzer) Phase() ([]float64, error) {
	if !a.cfg.ComputePhase {
		return nil, audio.ErrNotSupported
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.ready {
		return nil, audio.ErrNotReady
	}
	out := make([]float64, len(a.phase))
	copy(out, a.phase)
	return out, nil
}

// Peak returns the frequency and magnitude of the strongest non-DC bin of
// the last transform.
func (a *Analyzer) Peak() (freq, mag float64, err error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.ready {
		return 0, 0, audio.ErrNotReady
	}
	return a.peakFreq, a.peakMag, nil
}

// ProcessCount returns the number of completed transforms.
func (a *Analyzer) ProcessCount() uint32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.processCount
}

// Ready reports whether at least one transform has completed.
func (a *Analyzer) Ready() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ready
}

// Reset clears the accumulation buffer and all published results.
func (a *Analyzer) Reset() {
	a.pos = 0
	for i := range a.buf {
		a.buf[i] = 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ready = false
	a.processCount = 0
	a.peakFreq = 0
	a.peakMag = 0
	for i := range a.magnitude {
		a.magnitude[i] = 0
	}
	for i := range a.phase {
		a.phase[i] = 0
	}
}

// BinToFreq converts a bin index to its center frequency in Hz.
func BinToFreq(bin, fftSize, sampleRate int) float64 {
	return float64(bin) * float64(sampleRate) / float64(fftSize)
}
