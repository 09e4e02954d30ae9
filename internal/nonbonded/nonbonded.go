package nonbonded

import (
	"errors"
	"fmt"
	"math"

	"github.com/chryswoods/openmm/internal/stream"
	"github.com/chryswoods/openmm/internal/system"
)

// ErrDuplication indicates a duplication factor below one.
var ErrDuplication = errors.New("nonbonded: duplication factor must be >= 1")

// widthBlock pads partial buffer widths; padded entries stay zero.
const widthBlock = 16

// Evaluator computes LJ + Coulomb forces for every non-excluded pair into
// duplicated partial buffers. Buffers are owned by the evaluator and
// reused across steps.
type Evaluator struct {
	particleCount int
	width         int // padded particle width per partial buffer
	dup           int
	epsfac        float64
	minChunk      int

	charges  []float64
	sigmas   []float64
	epsilons []float64
	excl     [][]int32

	partials [][]float64
}

// NewEvaluator builds the pairwise evaluator. dup is the duplication
// factor D; epsfac the Coulomb prefactor applied to charge products.
func NewEvaluator(sys *system.System, dup int, epsfac float64, minChunk int) (*Evaluator, error) {
	if dup < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrDuplication, dup)
	}

	n := sys.ParticleCount()
	e := &Evaluator{
		particleCount: n,
		width:         stream.PadWidth(n, widthBlock),
		dup:           dup,
		epsfac:        epsfac,
		minChunk:      minChunk,
		charges:       make([]float64, n),
		sigmas:        make([]float64, n),
		epsilons:      make([]float64, n),
		excl:          sys.Exclusions(),
	}
	if e.minChunk <= 0 {
		e.minChunk = 64
	}

	for i, p := range sys.Particles {
		e.charges[i] = p.Charge
		e.sigmas[i] = p.Sigma
		e.epsilons[i] = p.Epsilon
	}

	e.partials = make([][]float64, dup)
	for d := range e.partials {
		e.partials[d] = stream.Vec3Buffer(e.width)
	}

	return e, nil
}

// Duplication returns the duplication factor D.
func (e *Evaluator) Duplication() int { return e.dup }

// Width returns the padded per-buffer particle width.
func (e *Evaluator) Width() int { return e.width }

// Partials returns the duplicated partial buffers filled by the last
// Evaluate call, ready for the merge reduction.
func (e *Evaluator) Partials() [][]float64 { return e.partials }

// Evaluate fills the partial buffers with the pairwise forces at the given
// positions. Particle i's row in partial d accumulates its interactions
// with partners j where j mod D == d; each (d, i) element is written by
// exactly one chunk, so the loop parallelizes over particles with no
// shared mutable state. Padding entries stay zero.
func (e *Evaluator) Evaluate(positions []float64) {
	for _, partial := range e.partials {
		stream.Zero(partial)
	}

	n := e.particleCount
	stream.ParallelFor(n, e.minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			e.evalParticle(i, positions)
		}
	})
}

func (e *Evaluator) evalParticle(i int, pos []float64) {
	xi, yi, zi := pos[i*3], pos[i*3+1], pos[i*3+2]
	qi := e.charges[i]
	si := e.sigmas[i]
	epsi := e.epsilons[i]
	excl := e.excl[i]
	nextExcl := 0

	for j := 0; j < e.particleCount; j++ {
		if j == i {
			continue
		}
		// Exclusion lists are sorted; walk them alongside the partner loop.
		for nextExcl < len(excl) && int(excl[nextExcl]) < j {
			nextExcl++
		}
		if nextExcl < len(excl) && int(excl[nextExcl]) == j {
			continue
		}

		dx := xi - pos[j*3]
		dy := yi - pos[j*3+1]
		dz := zi - pos[j*3+2]
		r2 := dx*dx + dy*dy + dz*dz
		if r2 == 0 {
			continue
		}
		invR2 := 1 / r2
		invR := math.Sqrt(invR2)

		sig := 0.5 * (si + e.sigmas[j])
		eps := math.Sqrt(epsi * e.epsilons[j])
		sig2 := sig * sig * invR2
		sig6 := sig2 * sig2 * sig2
		f := (24*eps*(2*sig6*sig6-sig6) + e.epsfac*qi*e.charges[j]*invR) * invR2

		dst := e.partials[j%e.dup]
		dst[i*3] += f * dx
		dst[i*3+1] += f * dy
		dst[i*3+2] += f * dz
	}
}
