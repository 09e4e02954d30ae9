package gather

import (
	"errors"
	"fmt"

	"github.com/chryswoods/openmm/internal/invmap"
	"github.com/chryswoods/openmm/internal/stream"
)

// Domain errors for the reduction kernels.
var (
	// ErrDimensionMismatch indicates buffers sized inconsistently with the
	// particle count or with each other.
	ErrDimensionMismatch = errors.New("gather: dimension mismatch")

	// ErrRoleCount indicates role force arrays and inverse maps of
	// different lengths.
	ErrRoleCount = errors.New("gather: role force arrays and inverse maps disagree")
)

// DefaultMinChunk is the smallest per-goroutine particle range. Below this,
// chunked dispatch costs more than it saves.
const DefaultMinChunk = 64

// Reducer accumulates role force arrays onto particles through inverse
// maps. The zero value is not usable; call NewReducer.
type Reducer struct {
	minChunk int
}

func NewReducer(minChunk int) *Reducer {
	if minChunk <= 0 {
		minChunk = DefaultMinChunk
	}
	return &Reducer{minChunk: minChunk}
}

// Accumulate adds every term's role contribution into the particle it
// belongs to. roleForces[r] holds one 3-vector per term slot with slot 0
// hard zero; maps[r] is the inverse map for the same role. The force buffer
// is strictly added to, never overwritten.
//
// Passes over the same destination run sequentially; particles within one
// pass run unordered on parallel chunks. The fixed role and level order
// makes repeated runs bitwise reproducible.
func (r *Reducer) Accumulate(maps []*invmap.Map, roleForces [][]float64, particleCount int, force []float64) error {
	if len(maps) != len(roleForces) {
		return fmt.Errorf("%w: %d maps, %d role force arrays", ErrRoleCount, len(maps), len(roleForces))
	}
	if len(force) < particleCount*stream.Stride {
		return fmt.Errorf("%w: force buffer %d for %d particles", ErrDimensionMismatch, len(force), particleCount)
	}

	// Validate everything up front: the force buffer must stay untouched
	// unless the whole accumulation can run.
	for _, m := range maps {
		if m == nil {
			continue
		}
		for l := 0; l < m.Levels(); l++ {
			if len(m.Level(l)) < particleCount {
				return fmt.Errorf("%w: role %s level %d has %d entries for %d particles",
					ErrDimensionMismatch, m.Role(), l, len(m.Level(l)), particleCount)
			}
		}
	}

	for ri, m := range maps {
		if m == nil {
			continue
		}
		rf := roleForces[ri]
		for l := 0; l < m.Levels(); l++ {
			r.accumulateLevel(m.Level(l), rf, particleCount, force)
		}
	}

	return nil
}

// accumulateLevel performs one (role, level) pass. The sentinel resolves to
// the reserved zero slot instead of a branch, so every particle does the
// same load-add.
func (r *Reducer) accumulateLevel(level []int32, roleForce []float64, particleCount int, force []float64) {
	stream.ParallelFor(particleCount, r.minChunk, func(start, end int) {
		for p := start; p < end; p++ {
			slot := int(level[p]) * stream.Stride
			fp := p * stream.Stride
			force[fp] += roleForce[slot]
			force[fp+1] += roleForce[slot+1]
			force[fp+2] += roleForce[slot+2]
		}
	})
}
