// Package mock provides test doubles for the audio.Node interface.
package mock

import (
	"sync"

	"github.com/niklasonfire/z-audio-kit/audio"
)

// Journal records the order in which mock nodes were invoked. Safe for use
// from multiple goroutines.
type Journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *Journal) add(tag string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, tag)
}

// Entries returns a copy of the recorded invocation tags.
func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.entries))
	copy(out, j.entries)
	return out
}

// Len returns the number of recorded invocations.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// Pass is a pass-through node that records every invocation in a journal.
type Pass struct {
	Tag     string
	Journal *Journal
	Resets  int
}

// Process records the invocation and returns the block unchanged.
func (p *Pass) Process(in *audio.Block) *audio.Block {
	if p.Journal != nil {
		p.Journal.add(p.Tag)
	}
	return in
}

// Reset counts reset calls.
func (p *Pass) Reset() {
	p.Resets++
}

// Drop is a node that records the invocation, releases the block and returns
// nil, simulating a dropped signal.
type Drop struct {
	Tag     string
	Journal *Journal
}

// Process releases the block and returns nil.
func (d *Drop) Process(in *audio.Block) *audio.Block {
	if d.Journal != nil {
		d.Journal.add(d.Tag)
	}
	if in != nil {
		in.Release()
	}
	return nil
}

// Reset is a no-op.
func (d *Drop) Reset() {}
