package spectrum

import "math"

// Window identifies the weighting applied to a frame before the transform.
// The zero value is Rectangular.
type Window int

const (
	Rectangular Window = iota
	Hann
	Hamming
	Blackman
	FlatTop
)

// String returns the window name.
func (w Window) String() string {
	switch w {
	case Rectangular:
		return "rectangular"
	case Hann:
		return "hann"
	case Hamming:
		return "hamming"
	case Blackman:
		return "blackman"
	case FlatTop:
		return "flattop"
	}
	return "unknown"
}

// coefficients returns the window, power-normalized so that the total window
// energy equals that of the unwindowed frame (sum of squares == size).
func coefficients(w Window, size int) []float64 {
	c := make([]float64, size)
	switch w {
	case Hann:
		for i := range c {
			c[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
		}
	case Hamming:
		for i := range c {
			c[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(size-1))
		}
	case Blackman:
		for i := range c {
			x := 2 * math.Pi * float64(i) / float64(size-1)
			c[i] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
		}
	case FlatTop:
		for i := range c {
			x := 2 * math.Pi * float64(i) / float64(size-1)
			c[i] = 1 - 1.93*math.Cos(x) + 1.29*math.Cos(2*x) -
				0.388*math.Cos(3*x) + 0.028*math.Cos(4*x)
		}
	default:
		for i := range c {
			c[i] = 1
		}
	}

	var power float64
	for _, v := range c {
		power += v * v
	}
	norm := math.Sqrt(float64(size) / power)
	for i := range c {
		c[i] *= norm
	}
	return c
}
