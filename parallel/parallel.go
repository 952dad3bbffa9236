// Package parallel provides the public API for describing a worker's
// position in a distributed training runtime, plus a bounded parallel-for
// helper.
package parallel

import (
	"github.com/loom-ml/loom/internal/parallel"
)

// Mode identifies a parallelism dimension.
type Mode = parallel.Mode

// Parallelism dimensions.
const (
	Data     Mode = parallel.Data
	Tensor   Mode = parallel.Tensor
	Sequence Mode = parallel.Sequence
	Pipeline Mode = parallel.Pipeline
)

// Context describes this worker's rank and group size per mode.
type Context = parallel.Context

// Group is a single-mode Context.
type Group = parallel.Group

// Config controls parallel execution behavior.
type Config = parallel.Config

// NewGroup creates a validated single-mode context.
func NewGroup(mode Mode, rank, world int) (*Group, error) {
	return parallel.NewGroup(mode, rank, world)
}

// NewSequenceGroup creates a validated sequence-parallel context.
func NewSequenceGroup(rank, world int) (*Group, error) {
	return parallel.NewSequenceGroup(rank, world)
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	return parallel.DefaultConfig()
}

// For executes f(i) for i in [0, n) with optional parallelism.
func For(n int, f func(i int), cfg Config) {
	parallel.For(n, f, cfg)
}
