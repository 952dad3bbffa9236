package parallel

import "fmt"

// Mode identifies a parallelism dimension of the surrounding distributed
// training runtime.
type Mode int

// Parallelism dimensions.
const (
	Data Mode = iota
	Tensor
	Sequence
	Pipeline
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case Data:
		return "data"
	case Tensor:
		return "tensor"
	case Sequence:
		return "sequence"
	case Pipeline:
		return "pipeline"
	default:
		return "unknown"
	}
}

// Context describes this worker's position in the distributed runtime.
// The data pipeline only reads it; group setup and collectives belong to
// the training runtime.
type Context interface {
	// LocalRank returns this worker's rank within the group for a mode.
	LocalRank(mode Mode) int

	// WorldSize returns the group size for a mode.
	// A world size of 1 means the mode is not parallelized.
	WorldSize(mode Mode) int
}

// Group is a single-mode Context: rank/world for one parallelism dimension,
// world size 1 for every other.
type Group struct {
	mode  Mode
	rank  int
	world int
}

// NewGroup creates a validated single-mode context.
func NewGroup(mode Mode, rank, world int) (*Group, error) {
	if world <= 0 {
		return nil, fmt.Errorf("world size must be positive, got %d", world)
	}
	if rank < 0 || rank >= world {
		return nil, fmt.Errorf("rank %d out of range [0, %d)", rank, world)
	}
	return &Group{mode: mode, rank: rank, world: world}, nil
}

// NewSequenceGroup creates a validated sequence-parallel context.
func NewSequenceGroup(rank, world int) (*Group, error) {
	return NewGroup(Sequence, rank, world)
}

// LocalRank returns the group rank for the group's mode, 0 otherwise.
func (g *Group) LocalRank(mode Mode) int {
	if mode == g.mode {
		return g.rank
	}
	return 0
}

// WorldSize returns the group size for the group's mode, 1 otherwise.
func (g *Group) WorldSize(mode Mode) int {
	if mode == g.mode {
		return g.world
	}
	return 1
}
