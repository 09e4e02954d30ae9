// Package minimize relaxes a system by steepest descent on the force
// field. Each iteration evaluates forces and moves every particle along
// its force vector with a displacement cap, so it needs nothing beyond
// the force engine - no integrator, no velocities.
package minimize

import (
	"github.com/chryswoods/openmm/internal/engine"
	"github.com/chryswoods/openmm/internal/metrics"
	"github.com/chryswoods/openmm/internal/stream"
)

type Options struct {
	MaxIterations int
	StepSize      float64 // displacement per unit force
	MaxStep       float64 // displacement cap per particle per iteration
	Tolerance     float64 // converged when max |F| drops below this
}

func DefaultOptions() Options {
	return Options{
		MaxIterations: 500,
		StepSize:      1e-5,
		MaxStep:       0.01,
		Tolerance:     10.0,
	}
}

type Result struct {
	Iterations int
	Converged  bool
	// MaxForce holds the largest per-particle |F| after each iteration.
	MaxForce []float64
}

// Stepper runs the relaxation one iteration at a time, so interactive
// front ends can interleave drawing with stepping.
type Stepper struct {
	eng   *engine.Engine
	opt   Options
	pos   []float64
	force []float64

	iterations int
	history    []float64
	converged  bool
}

// NewStepper starts a relaxation at the given positions. The position
// buffer is owned by the stepper from here on.
func NewStepper(eng *engine.Engine, positions []float64, opt Options) *Stepper {
	return &Stepper{
		eng:   eng,
		opt:   opt,
		pos:   positions,
		force: stream.Vec3Buffer(eng.ParticleCount()),
	}
}

func (s *Stepper) Positions() []float64 { return s.pos }
func (s *Stepper) Iterations() int      { return s.iterations }
func (s *Stepper) Converged() bool      { return s.converged }
func (s *Stepper) History() []float64   { return s.history }

// Step runs one iteration and reports the max |F| after it. done becomes
// true on convergence or when the iteration budget is spent.
func (s *Stepper) Step() (maxForce float64, done bool, err error) {
	if s.converged || s.iterations >= s.opt.MaxIterations {
		return s.lastMax(), true, nil
	}

	stream.Zero(s.force)
	if err := s.eng.Forces(s.pos, s.force); err != nil {
		return 0, true, err
	}

	maxForce = metrics.MaxMagnitude(s.force)
	s.history = append(s.history, maxForce)
	s.iterations++

	if maxForce < s.opt.Tolerance {
		s.converged = true
		return maxForce, true, nil
	}

	// Scale the step down when the largest force would overshoot the cap.
	scale := s.opt.StepSize
	if maxForce*scale > s.opt.MaxStep {
		scale = s.opt.MaxStep / maxForce
	}
	for i := range s.pos {
		s.pos[i] += scale * s.force[i]
	}

	return maxForce, s.iterations >= s.opt.MaxIterations, nil
}

func (s *Stepper) lastMax() float64 {
	if len(s.history) == 0 {
		return 0
	}
	return s.history[len(s.history)-1]
}

// Run drives a stepper to completion.
func Run(eng *engine.Engine, positions []float64, opt Options) (*Result, error) {
	s := NewStepper(eng, positions, opt)
	for {
		_, done, err := s.Step()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	return &Result{
		Iterations: s.iterations,
		Converged:  s.converged,
		MaxForce:   s.history,
	}, nil
}
