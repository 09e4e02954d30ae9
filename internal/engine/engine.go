package engine

import (
	"errors"
	"fmt"

	"github.com/chryswoods/openmm/internal/config"
	"github.com/chryswoods/openmm/internal/gather"
	"github.com/chryswoods/openmm/internal/invmap"
	"github.com/chryswoods/openmm/internal/nonbonded"
	"github.com/chryswoods/openmm/internal/stream"
	"github.com/chryswoods/openmm/internal/system"
	"github.com/chryswoods/openmm/internal/terms"
)

// Domain errors for engine construction and evaluation.
var (
	// ErrEmptySystem indicates a system with no particles.
	ErrEmptySystem = errors.New("engine: system has no particles")

	// ErrDimensionMismatch indicates position or force buffers sized
	// inconsistently with the system.
	ErrDimensionMismatch = errors.New("engine: buffer dimension mismatch")
)

// Engine evaluates all force field terms and accumulates them onto a
// caller-owned force buffer. Build one per topology; it holds no mutable
// state across calls other than its scratch buffers, so a single Engine
// must not be shared by concurrent callers.
type Engine struct {
	sys   *system.System
	cfg   *config.Config
	table *terms.Table
	maps  []*invmap.Map
	nb    *nonbonded.Evaluator

	reducer *gather.Reducer
	merger  *gather.Merger

	rolePool *stream.Pool
}

// New validates the topology against the configured capacities and builds
// the evaluation pipeline. A fan-in overflow is returned as a
// *invmap.ConfigError naming the role and the observed count; nothing is
// evaluated until construction has succeeded.
func New(sys *system.System, cfg *config.Config) (*Engine, error) {
	if sys.ParticleCount() == 0 {
		return nil, ErrEmptySystem
	}
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	e := &Engine{
		sys:     sys,
		cfg:     cfg,
		table:   terms.NewTable(sys, cfg.LJ14Scale, cfg.Coulomb14Scale, cfg.MinChunk),
		reducer: gather.NewReducer(cfg.MinChunk),
		merger:  gather.NewMerger(cfg.MinChunk),
	}

	levels := []int{cfg.Levels.I, cfg.Levels.J, cfg.Levels.K, cfg.Levels.L}
	e.maps = make([]*invmap.Map, invmap.NumRoles)
	for r := invmap.RoleI; r < invmap.NumRoles; r++ {
		m, err := invmap.Build(r, e.table.RoleRefs(r), sys.ParticleCount(), levels[r])
		if err != nil {
			return nil, err
		}
		e.maps[r] = m
	}

	e.rolePool = stream.NewPool(e.table.Capacity() * stream.Stride)

	nb, err := nonbonded.NewEvaluator(sys, cfg.Duplication, terms.CoulombFactor, cfg.MinChunk)
	if err != nil {
		return nil, err
	}
	e.nb = nb

	return e, nil
}

func (e *Engine) ParticleCount() int { return e.sys.ParticleCount() }

// TermCount returns the number of real bonded terms in the padded table.
func (e *Engine) TermCount() int { return e.table.TermCount() }

// Forces evaluates every term at the given positions and adds the
// resulting per-particle forces into force. Both buffers carry three
// components per particle.
func (e *Engine) Forces(positions, force []float64) error {
	n := e.sys.ParticleCount() * stream.Stride
	if len(positions) != n {
		return fmt.Errorf("%w: %d position components for %d particles", ErrDimensionMismatch, len(positions), e.sys.ParticleCount())
	}
	if len(force) != n {
		return fmt.Errorf("%w: %d force components for %d particles", ErrDimensionMismatch, len(force), e.sys.ParticleCount())
	}

	roleForce := make([][]float64, invmap.NumRoles)
	for r := range roleForce {
		roleForce[r] = e.rolePool.Get()
	}
	defer func() {
		for _, buf := range roleForce {
			e.rolePool.Put(buf)
		}
	}()

	// Bonded: evaluate all term slots, then gather. Evaluate returns only
	// after every slot is written, which is the barrier the gather passes
	// rely on.
	e.table.Evaluate(positions, roleForce)
	if err := e.reducer.Accumulate(e.maps, roleForce, e.sys.ParticleCount(), force); err != nil {
		return err
	}

	// Nonbonded: duplicated partials, then merge.
	e.nb.Evaluate(positions)
	return e.merger.Merge(e.nb.Partials(), e.sys.ParticleCount(), force)
}
