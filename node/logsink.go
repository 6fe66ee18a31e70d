package node

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/niklasonfire/z-audio-kit/audio"
	"github.com/niklasonfire/z-audio-kit/log"
)

// LogSink terminates a chain: it logs the peak value of every block it
// consumes at debug level, then releases the block.
type LogSink struct {
	log    *logrus.Logger
	blocks uint64
}

// NewLogSink creates a logging sink. A nil logger falls back to the package
// default.
func NewLogSink(logger *logrus.Logger) *LogSink {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &LogSink{log: logger}
}

// Process consumes and releases the block, never returning one.
func (s *LogSink) Process(in *audio.Block) *audio.Block {
	if in == nil {
		return nil
	}
	var peak int
	for _, v := range in.Data() {
		abs := int(v)
		if abs < 0 {
			abs = -abs
		}
		if abs > peak {
			peak = abs
		}
	}
	n := atomic.AddUint64(&s.blocks, 1)
	s.log.WithFields(logrus.Fields{
		"block": n,
		"peak":  peak,
	}).Debug("sink: block consumed")
	in.Release()
	return nil
}

// Blocks returns the number of blocks consumed so far.
func (s *LogSink) Blocks() uint64 {
	return atomic.LoadUint64(&s.blocks)
}

// Reset zeroes the block counter.
func (s *LogSink) Reset() {
	atomic.StoreUint64(&s.blocks, 0)
}
