// Package node provides the basic processing nodes: a sine generator, a
// volume transform, a level-metering analyzer, a logging sink and a zero-copy
// splitter. Every type implements audio.Node and can run under either
// execution model: sequential inside a channel strip, or threaded behind an
// audio.Runner.
package node
