package minimize

import (
	"testing"

	"github.com/chryswoods/openmm/internal/config"
	"github.com/chryswoods/openmm/internal/engine"
	"github.com/chryswoods/openmm/internal/metrics"
	"github.com/chryswoods/openmm/internal/stream"
	"github.com/chryswoods/openmm/internal/system"
)

func stretchedChain(t *testing.T, n int, factor float64) (*engine.Engine, []float64) {
	t.Helper()
	sys := system.Chain(n)
	eng, err := engine.New(sys, config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	pos := make([]float64, len(sys.Positions))
	copy(pos, sys.Positions)
	for i := range pos {
		pos[i] *= factor
	}
	return eng, pos
}

func TestRunReducesForces(t *testing.T) {
	eng, pos := stretchedChain(t, 8, 1.2)

	force := stream.Vec3Buffer(eng.ParticleCount())
	if err := eng.Forces(pos, force); err != nil {
		t.Fatal(err)
	}
	before := metrics.MaxMagnitude(force)
	if before == 0 {
		t.Fatal("stretched chain should not start relaxed")
	}

	opt := DefaultOptions()
	opt.MaxIterations = 200
	res, err := Run(eng, pos, opt)
	if err != nil {
		t.Fatal(err)
	}
	if res.Iterations == 0 || len(res.MaxForce) != res.Iterations {
		t.Fatalf("iterations %d, history %d", res.Iterations, len(res.MaxForce))
	}

	after := res.MaxForce[len(res.MaxForce)-1]
	if after >= before {
		t.Errorf("max |F| went from %v to %v, expected a decrease", before, after)
	}
}

func TestStepperStopsAtBudget(t *testing.T) {
	eng, pos := stretchedChain(t, 6, 1.3)

	opt := DefaultOptions()
	opt.MaxIterations = 5
	opt.Tolerance = 0 // never converge on tolerance

	s := NewStepper(eng, pos, opt)
	for i := 0; i < 10; i++ {
		_, done, err := s.Step()
		if err != nil {
			t.Fatal(err)
		}
		if done {
			break
		}
	}
	if s.Iterations() != 5 {
		t.Errorf("ran %d iterations, want 5", s.Iterations())
	}
	if s.Converged() {
		t.Error("should not report convergence with zero tolerance")
	}

	// Further steps are no-ops once the budget is spent.
	_, done, err := s.Step()
	if err != nil {
		t.Fatal(err)
	}
	if !done || s.Iterations() != 5 {
		t.Errorf("stepper kept going past its budget")
	}
}

func TestStepperConverges(t *testing.T) {
	// An unstretched chain starts at every rest value except the weak
	// nonbonded background, so a loose tolerance converges immediately.
	sys := system.Chain(5)
	eng, err := engine.New(sys, config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	pos := make([]float64, len(sys.Positions))
	copy(pos, sys.Positions)

	opt := DefaultOptions()
	opt.Tolerance = 1e6

	s := NewStepper(eng, pos, opt)
	_, done, err := s.Step()
	if err != nil {
		t.Fatal(err)
	}
	if !done || !s.Converged() {
		t.Error("expected immediate convergence with a huge tolerance")
	}
}
