package gather

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/chryswoods/openmm/internal/stream"
)

// Merger folds D duplicated partial-force buffers into the shared force
// buffer. The pairwise path trades memory for branch-free parallel writes:
// each duplicate lane owns a full-width buffer, and the merge is the
// compensating reduction.
type Merger struct {
	minChunk int
}

func NewMerger(minChunk int) *Merger {
	if minChunk <= 0 {
		minChunk = DefaultMinChunk
	}
	return &Merger{minChunk: minChunk}
}

// Merge adds the particle-wise sum across the partial buffers into force.
// Partial buffers may be wider than the particle count; trailing padding is
// ignored. With a single partial this is a plain element-wise add.
func (m *Merger) Merge(partials [][]float64, particleCount int, force []float64) error {
	n := particleCount * stream.Stride
	if len(force) < n {
		return fmt.Errorf("%w: force buffer %d for %d particles", ErrDimensionMismatch, len(force), particleCount)
	}
	for d, partial := range partials {
		if len(partial) < n {
			return fmt.Errorf("%w: partial %d has %d entries, need %d", ErrDimensionMismatch, d, len(partial), n)
		}
	}

	// Parallel over particle chunks; duplicates summed innermost so each
	// destination element is touched by exactly one goroutine.
	stream.ParallelFor(particleCount, m.minChunk, func(start, end int) {
		s, e := start*stream.Stride, end*stream.Stride
		dst := force[s:e]
		for _, partial := range partials {
			floats.Add(dst, partial[s:e])
		}
	})

	return nil
}
