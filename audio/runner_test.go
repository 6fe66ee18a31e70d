package audio_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/niklasonfire/z-audio-kit/audio"
	"github.com/niklasonfire/z-audio-kit/mock"
)

func TestRunnerPassesBlocksDownstream(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool, err := audio.NewPool(2, 16)
	require.NoError(t, err)

	journal := &mock.Journal{}
	r := audio.NewRunner(&mock.Pass{Tag: "p", Journal: journal}, 2)
	out := make(chan *audio.Block, 2)
	r.SetOutput(out)

	ctx, cancel := context.WithCancel(context.Background())
	errc := r.Run(ctx)

	b, err := pool.Allocate()
	require.NoError(t, err)
	r.In() <- b

	got := <-out
	assert.Same(t, b, got)
	assert.Equal(t, []string{"p"}, journal.Entries())
	got.Release()

	cancel()
	_, ok := <-errc
	assert.False(t, ok)
	assert.Equal(t, 2, pool.Available())
}

func TestRunnerReleasesWithoutOutput(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool, err := audio.NewPool(1, 16)
	require.NoError(t, err)

	r := audio.NewRunner(&mock.Pass{}, 0)
	ctx, cancel := context.WithCancel(context.Background())
	errc := r.Run(ctx)

	b, err := pool.Allocate()
	require.NoError(t, err)
	r.In() <- b

	assert.Eventually(t, func() bool {
		return pool.Available() == 1
	}, time.Second, time.Millisecond)

	cancel()
	<-errc
}

func TestRunnerDropSignal(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool, err := audio.NewPool(1, 16)
	require.NoError(t, err)

	journal := &mock.Journal{}
	r := audio.NewRunner(&mock.Drop{Tag: "d", Journal: journal}, 1)
	out := make(chan *audio.Block, 1)
	r.SetOutput(out)

	ctx, cancel := context.WithCancel(context.Background())
	errc := r.Run(ctx)

	b, err := pool.Allocate()
	require.NoError(t, err)
	r.In() <- b

	assert.Eventually(t, func() bool {
		return pool.Available() == 1
	}, time.Second, time.Millisecond)
	assert.Empty(t, out)

	cancel()
	<-errc
	assert.Equal(t, []string{"d"}, journal.Entries())
}

func TestRunnerReleasesInFlightOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool, err := audio.NewPool(1, 16)
	require.NoError(t, err)

	journal := &mock.Journal{}
	r := audio.NewRunner(&mock.Pass{Tag: "p", Journal: journal}, 1)
	// Unbuffered output that nobody reads: the push blocks until cancel.
	r.SetOutput(make(chan *audio.Block))

	ctx, cancel := context.WithCancel(context.Background())
	errc := r.Run(ctx)

	b, err := pool.Allocate()
	require.NoError(t, err)
	r.In() <- b

	// Wait until the block was processed and the runner is stuck pushing.
	assert.Eventually(t, func() bool {
		return journal.Len() == 1
	}, time.Second, time.Millisecond)

	cancel()
	<-errc
	assert.Equal(t, 1, pool.Available())
}
