package system

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func TestValidateCatchesBadIndices(t *testing.T) {
	sys := &System{
		Particles: make([]Particle, 3),
		Bonds:     []Bond{{I: 0, J: 3}},
	}
	if err := sys.Validate(); !errors.Is(err, ErrBadIndex) {
		t.Errorf("got %v, want ErrBadIndex", err)
	}

	sys = &System{
		Particles: make([]Particle, 2),
		Positions: make([]float64, 5),
	}
	if err := sys.Validate(); !errors.Is(err, ErrBadIndex) {
		t.Errorf("bad positions: got %v, want ErrBadIndex", err)
	}
}

func TestExclusions(t *testing.T) {
	sys := &System{
		Particles: make([]Particle, 4),
		Bonds:     []Bond{{I: 0, J: 1}, {I: 1, J: 2}},
		Angles:    []Angle{{I: 0, J: 1, K: 2}},
		Pairs14:   []Pair14{{I: 0, J: 3}},
	}

	excl := sys.Exclusions()

	want := [][]int32{
		{1, 2, 3}, // bonded to 1, angle end 2, pair 3
		{0, 2},
		{0, 1},
		{0},
	}
	for p := range want {
		if len(excl[p]) != len(want[p]) {
			t.Fatalf("particle %d exclusions %v, want %v", p, excl[p], want[p])
		}
		for i := range want[p] {
			if excl[p][i] != want[p][i] {
				t.Errorf("particle %d exclusions %v, want %v", p, excl[p], want[p])
				break
			}
		}
	}
}

func TestExclusionsDeduplicated(t *testing.T) {
	// The same pair both bonded and listed as 1-4.
	sys := &System{
		Particles: make([]Particle, 2),
		Bonds:     []Bond{{I: 0, J: 1}},
		Pairs14:   []Pair14{{I: 0, J: 1}},
	}
	excl := sys.Exclusions()
	if len(excl[0]) != 1 || excl[0][0] != 1 {
		t.Errorf("exclusions %v, want [1]", excl[0])
	}
}

func TestChainTopology(t *testing.T) {
	sys := Chain(6)

	if sys.ParticleCount() != 6 {
		t.Fatalf("particle count %d, want 6", sys.ParticleCount())
	}
	if len(sys.Bonds) != 5 || len(sys.Angles) != 4 || len(sys.Torsions) != 3 || len(sys.Pairs14) != 3 {
		t.Errorf("term counts: %d bonds, %d angles, %d torsions, %d pairs",
			len(sys.Bonds), len(sys.Angles), len(sys.Torsions), len(sys.Pairs14))
	}
	if err := sys.Validate(); err != nil {
		t.Fatalf("chain fails validation: %v", err)
	}

	// Bonds must start at their rest length so relaxation begins gently.
	for _, b := range sys.Bonds {
		dx := sys.Positions[b.I*3] - sys.Positions[b.J*3]
		dy := sys.Positions[b.I*3+1] - sys.Positions[b.J*3+1]
		dz := sys.Positions[b.I*3+2] - sys.Positions[b.J*3+2]
		r := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if math.Abs(r-b.Length) > 1e-9 {
			t.Errorf("bond %d-%d length %v, want %v", b.I, b.J, r, b.Length)
		}
	}

	// Even-length chains stay neutral.
	q := 0.0
	for _, p := range sys.Particles {
		q += p.Charge
	}
	if math.Abs(q) > 1e-12 {
		t.Errorf("net charge %v, want 0", q)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system.yaml")

	sys := Chain(4)
	if err := Save(path, sys); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ParticleCount() != 4 {
		t.Errorf("loaded %d particles, want 4", loaded.ParticleCount())
	}
	if len(loaded.Bonds) != len(sys.Bonds) {
		t.Errorf("loaded %d bonds, want %d", len(loaded.Bonds), len(sys.Bonds))
	}
	if loaded.Bonds[0].K != sys.Bonds[0].K {
		t.Errorf("bond constant %v, want %v", loaded.Bonds[0].K, sys.Bonds[0].K)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	sys := &System{
		Particles: make([]Particle, 2),
		Bonds:     []Bond{{I: 0, J: 5}},
	}
	if err := Save(path, sys); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := Load(path); !errors.Is(err, ErrBadIndex) {
		t.Errorf("got %v, want ErrBadIndex", err)
	}
}
