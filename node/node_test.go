package node_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niklasonfire/z-audio-kit/audio"
	"github.com/niklasonfire/z-audio-kit/node"
)

func newPool(t *testing.T, capacity, blockSize int) *audio.Pool {
	t.Helper()
	pool, err := audio.NewPool(capacity, blockSize)
	require.NoError(t, err)
	return pool
}

func fill(b *audio.Block, v int16) {
	for i := range b.Data() {
		b.Data()[i] = v
	}
}

func TestSineGenerates(t *testing.T) {
	pool := newPool(t, 2, 128)
	s := node.NewSine(pool, 48000, 1000, 0.5)

	b := s.Process(nil)
	require.NotNil(t, b)
	assert.Equal(t, 128, b.Len())

	// First sample is sin(0) == 0, then the tone ramps up.
	assert.Equal(t, int16(0), b.Data()[0])
	want := int16(math.Sin(2*math.Pi*1000/48000) * 0.5 * math.MaxInt16)
	assert.Equal(t, want, b.Data()[1])
	b.Release()
}

func TestSinePhaseContinuity(t *testing.T) {
	pool := newPool(t, 2, 64)
	s := node.NewSine(pool, 48000, 440, 0.5)

	first := s.Process(nil)
	require.NotNil(t, first)
	second := s.Process(nil)
	require.NotNil(t, second)

	// Sample 64 of a continuous tone, not a phase restart.
	want := int16(math.Sin(2*math.Pi*440/48000*64) * 0.5 * math.MaxInt16)
	assert.Equal(t, want, second.Data()[0])

	first.Release()
	second.Release()
}

func TestSineResetRestartsPhase(t *testing.T) {
	pool := newPool(t, 2, 64)
	s := node.NewSine(pool, 48000, 440, 0.5)

	first := s.Process(nil)
	require.NotNil(t, first)
	firstData := make([]int16, first.Len())
	copy(firstData, first.Data())
	first.Release()

	s.Reset()
	again := s.Process(nil)
	require.NotNil(t, again)
	assert.Equal(t, firstData, again.Data())
	again.Release()
}

func TestSineReleasesInput(t *testing.T) {
	pool := newPool(t, 2, 32)
	s := node.NewSine(pool, 48000, 440, 0.5)

	in, err := pool.Allocate()
	require.NoError(t, err)
	out := s.Process(in)
	require.NotNil(t, out)
	assert.NotSame(t, in, out)
	out.Release()
	assert.Equal(t, 2, pool.Available())
}

func TestSinePoolExhausted(t *testing.T) {
	pool := newPool(t, 1, 32)
	s := node.NewSine(pool, 48000, 440, 0.5)

	held, err := pool.Allocate()
	require.NoError(t, err)
	assert.Nil(t, s.Process(nil))
	held.Release()
}

func TestVolumeScales(t *testing.T) {
	pool := newPool(t, 1, 4)
	v := node.NewVolume(0.5)

	b, err := pool.Allocate()
	require.NoError(t, err)
	copy(b.Data(), []int16{1000, -1000, 0, 20000})

	out := v.Process(b)
	require.NotNil(t, out)
	assert.Same(t, b, out)
	assert.Equal(t, []int16{500, -500, 0, 10000}, out.Data())
	out.Release()
}

func TestVolumeClips(t *testing.T) {
	pool := newPool(t, 1, 2)
	v := node.NewVolume(4)

	b, err := pool.Allocate()
	require.NoError(t, err)
	copy(b.Data(), []int16{16384, -16384})

	out := v.Process(b)
	require.NotNil(t, out)
	assert.Equal(t, []int16{math.MaxInt16, math.MinInt16}, out.Data())
	out.Release()
}

func TestVolumeCopiesSharedInput(t *testing.T) {
	pool := newPool(t, 2, 2)
	v := node.NewVolume(2)

	b, err := pool.Allocate()
	require.NoError(t, err)
	copy(b.Data(), []int16{100, 200})
	b.Retain()

	out := v.Process(b)
	require.NotNil(t, out)
	assert.NotSame(t, b, out)
	assert.Equal(t, []int16{200, 400}, out.Data())
	// The sibling's view is untouched.
	assert.Equal(t, []int16{100, 200}, b.Data())

	out.Release()
	b.Release()
	assert.Equal(t, 2, pool.Available())
}

func TestVolumeDropsFrameWhenCopyFails(t *testing.T) {
	pool := newPool(t, 1, 2)
	v := node.NewVolume(2)

	b, err := pool.Allocate()
	require.NoError(t, err)
	b.Retain()

	assert.Nil(t, v.Process(b))
	// The node released its reference; the sibling's survives.
	assert.Equal(t, 1, b.Refs())
	b.Release()
	assert.Equal(t, 1, pool.Available())
}

func TestVolumeSetFactor(t *testing.T) {
	v := node.NewVolume(1)
	assert.Equal(t, 1.0, v.Factor())
	v.SetFactor(0.25)
	assert.Equal(t, 0.25, v.Factor())
}

func TestAnalyzerLevels(t *testing.T) {
	pool := newPool(t, 1, 128)
	a := node.NewAnalyzer(0)

	b, err := pool.Allocate()
	require.NoError(t, err)
	fill(b, 16384) // -6 dBFS DC

	out := a.Process(b)
	require.Same(t, b, out)
	stats := a.Stats()
	assert.InDelta(t, -6.02, stats.RMSDB, 0.01)
	assert.InDelta(t, -6.02, stats.PeakDB, 0.01)
	assert.False(t, stats.Clipping)
	out.Release()
}

func TestAnalyzerFullScale(t *testing.T) {
	pool := newPool(t, 1, 64)
	a := node.NewAnalyzer(0)

	b, err := pool.Allocate()
	require.NoError(t, err)
	fill(b, math.MaxInt16)

	a.Process(b).Release()
	stats := a.Stats()
	assert.InDelta(t, 0, stats.RMSDB, 0.01)
	assert.InDelta(t, 0, stats.PeakDB, 0.01)
	assert.True(t, stats.Clipping)
}

func TestAnalyzerClippingNegative(t *testing.T) {
	pool := newPool(t, 1, 4)
	a := node.NewAnalyzer(0)

	b, err := pool.Allocate()
	require.NoError(t, err)
	b.Data()[2] = math.MinInt16

	a.Process(b).Release()
	assert.True(t, a.Stats().Clipping)
}

func TestAnalyzerSmoothing(t *testing.T) {
	pool := newPool(t, 1, 64)
	a := node.NewAnalyzer(0.9)

	b, err := pool.Allocate()
	require.NoError(t, err)
	fill(b, 16384)

	// One block of a 0.5 DC level through a 0.9 integrator: rms == 0.05.
	a.Process(b).Release()
	assert.InDelta(t, 20*math.Log10(0.05), a.Stats().RMSDB, 0.01)
}

func TestAnalyzerSilenceFloor(t *testing.T) {
	pool := newPool(t, 1, 64)
	a := node.NewAnalyzer(0)

	b, err := pool.Allocate()
	require.NoError(t, err)
	a.Process(b).Release()

	stats := a.Stats()
	assert.Equal(t, -100.0, stats.RMSDB)
	assert.Equal(t, -100.0, stats.PeakDB)
}

func TestAnalyzerReset(t *testing.T) {
	pool := newPool(t, 1, 64)
	a := node.NewAnalyzer(0.5)

	b, err := pool.Allocate()
	require.NoError(t, err)
	fill(b, 16384)
	a.Process(b).Release()
	require.Greater(t, a.Stats().RMSDB, -100.0)

	a.Reset()
	assert.Equal(t, -100.0, a.Stats().RMSDB)
	assert.Equal(t, -100.0, a.Stats().PeakDB)
	assert.False(t, a.Stats().Clipping)
}

func TestSplitterFanOut(t *testing.T) {
	pool := newPool(t, 1, 16)
	s := node.NewSplitter()

	q1 := make(chan *audio.Block, 1)
	q2 := make(chan *audio.Block, 1)
	q3 := make(chan *audio.Block, 1)
	require.NoError(t, s.AddOutput(q1))
	require.NoError(t, s.AddOutput(q2))
	require.NoError(t, s.AddOutput(q3))

	b, err := pool.Allocate()
	require.NoError(t, err)
	assert.Nil(t, s.Process(b))

	got1, got2, got3 := <-q1, <-q2, <-q3
	assert.Same(t, b, got1)
	assert.Same(t, b, got2)
	assert.Same(t, b, got3)
	assert.Equal(t, 3, b.Refs())

	got1.Release()
	got2.Release()
	got3.Release()
	assert.Equal(t, 1, pool.Available())
}

func TestSplitterCapacity(t *testing.T) {
	s := node.NewSplitter()
	for i := 0; i < 4; i++ {
		require.NoError(t, s.AddOutput(make(chan *audio.Block, 1)))
	}
	err := s.AddOutput(make(chan *audio.Block, 1))
	assert.True(t, errors.Is(err, audio.ErrCapacityExceeded))
}

func TestSplitterNoOutputsReleases(t *testing.T) {
	pool := newPool(t, 1, 16)
	s := node.NewSplitter()

	b, err := pool.Allocate()
	require.NoError(t, err)
	assert.Nil(t, s.Process(b))
	assert.Equal(t, 1, pool.Available())
}

func TestLogSinkConsumes(t *testing.T) {
	pool := newPool(t, 1, 16)
	s := node.NewLogSink(nil)

	for i := 0; i < 3; i++ {
		b, err := pool.Allocate()
		require.NoError(t, err)
		assert.Nil(t, s.Process(b))
	}
	assert.Equal(t, uint64(3), s.Blocks())
	assert.Equal(t, 1, pool.Available())

	s.Reset()
	assert.Equal(t, uint64(0), s.Blocks())
}

func TestNilInput(t *testing.T) {
	assert.Nil(t, node.NewVolume(1).Process(nil))
	assert.Nil(t, node.NewAnalyzer(0).Process(nil))
	assert.Nil(t, node.NewSplitter().Process(nil))
	assert.Nil(t, node.NewLogSink(nil).Process(nil))
}
