package spectrum

import (
	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Backend computes an unnormalized forward real-to-complex transform of a
// fixed size. dst receives size/2+1 frequency bins. The two implementations
// must produce matching magnitude and phase for the same input, differing
// only in speed; Accelerated dispatches to SIMD kernels where available.
type Backend interface {
	// Name identifies the backend for diagnostics.
	Name() string
	// Transform fills dst with the spectrum of src. len(src) must equal the
	// size the backend was created for and len(dst) must be len(src)/2+1.
	Transform(dst []complex128, src []float64)
}

// Accelerated returns the plan-based FFT backend. size must be a power of
// two supported by the planner.
func Accelerated(size int) (Backend, error) {
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, err
	}
	return &accelerated{
		plan: plan,
		in:   make([]complex128, size),
		out:  make([]complex128, size),
	}, nil
}

type accelerated struct {
	plan    *algofft.Plan[complex128]
	in, out []complex128
}

func (a *accelerated) Name() string { return "algo-fft" }

func (a *accelerated) Transform(dst []complex128, src []float64) {
	for i, v := range src {
		a.in[i] = complex(v, 0)
	}
	// Forward only fails on size mismatch, which construction rules out.
	if err := a.plan.Forward(a.out, a.in); err != nil {
		return
	}
	copy(dst, a.out[:len(src)/2+1])
}

// Portable returns the pure-Go real-FFT backend.
func Portable(size int) Backend {
	return &portable{fft: fourier.NewFFT(size)}
}

type portable struct {
	fft *fourier.FFT
}

func (p *portable) Name() string { return "gonum" }

func (p *portable) Transform(dst []complex128, src []float64) {
	p.fft.Coefficients(dst, src)
}
