package system

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrBadIndex indicates a term referencing a particle outside the system.
var ErrBadIndex = errors.New("system: particle index out of range")

// Particle holds the per-particle nonbonded parameters.
type Particle struct {
	Charge  float64 `yaml:"charge"`
	Sigma   float64 `yaml:"sigma"`
	Epsilon float64 `yaml:"epsilon"`
}

// Bond is a harmonic two-particle stretch term.
type Bond struct {
	I      int     `yaml:"i"`
	J      int     `yaml:"j"`
	Length float64 `yaml:"length"`
	K      float64 `yaml:"k"`
}

// Angle is a harmonic three-particle bend term. J is the vertex.
type Angle struct {
	I      int     `yaml:"i"`
	J      int     `yaml:"j"`
	K      int     `yaml:"k"`
	Theta0 float64 `yaml:"theta0"`
	Ka     float64 `yaml:"ka"`
}

// Torsion is a periodic four-particle dihedral term.
type Torsion struct {
	I           int     `yaml:"i"`
	J           int     `yaml:"j"`
	K           int     `yaml:"k"`
	L           int     `yaml:"l"`
	Periodicity int     `yaml:"periodicity"`
	Phase       float64 `yaml:"phase"`
	Kphi        float64 `yaml:"kphi"`
}

// RBTorsion is a Ryckaert-Bellemans four-particle dihedral term with
// coefficients in order of increasing powers of cos(psi).
type RBTorsion struct {
	I int        `yaml:"i"`
	J int        `yaml:"j"`
	K int        `yaml:"k"`
	L int        `yaml:"l"`
	C [6]float64 `yaml:"c"`
}

// Pair14 marks two particles as a bonded 1-4 pair whose nonbonded
// interaction is evaluated on the bonded path with reduced scale factors.
type Pair14 struct {
	I int `yaml:"i"`
	J int `yaml:"j"`
}

// System is the full topology consumed by the engine.
type System struct {
	Particles  []Particle  `yaml:"particles"`
	Bonds      []Bond      `yaml:"bonds"`
	Angles     []Angle     `yaml:"angles"`
	Torsions   []Torsion   `yaml:"torsions"`
	RBTorsions []RBTorsion `yaml:"rb_torsions"`
	Pairs14    []Pair14    `yaml:"pairs_14"`

	// Positions is the optional starting geometry, three components per
	// particle. Callers may supply their own instead.
	Positions []float64 `yaml:"positions,omitempty"`
}

func (s *System) ParticleCount() int { return len(s.Particles) }

// TermCount returns the total number of bonded terms.
func (s *System) TermCount() int {
	return len(s.Bonds) + len(s.Angles) + len(s.Torsions) + len(s.RBTorsions) + len(s.Pairs14)
}

// Validate checks every term index against the particle count.
func (s *System) Validate() error {
	n := len(s.Particles)
	check := func(kind string, term int, idx ...int) error {
		for _, i := range idx {
			if i < 0 || i >= n {
				return fmt.Errorf("%w: %s %d references particle %d of %d", ErrBadIndex, kind, term, i, n)
			}
		}
		return nil
	}

	for t, b := range s.Bonds {
		if err := check("bond", t, b.I, b.J); err != nil {
			return err
		}
	}
	for t, a := range s.Angles {
		if err := check("angle", t, a.I, a.J, a.K); err != nil {
			return err
		}
	}
	for t, d := range s.Torsions {
		if err := check("torsion", t, d.I, d.J, d.K, d.L); err != nil {
			return err
		}
	}
	for t, d := range s.RBTorsions {
		if err := check("rb_torsion", t, d.I, d.J, d.K, d.L); err != nil {
			return err
		}
	}
	for t, p := range s.Pairs14 {
		if err := check("pair_14", t, p.I, p.J); err != nil {
			return err
		}
	}
	if s.Positions != nil && len(s.Positions) != n*3 {
		return fmt.Errorf("%w: %d position components for %d particles", ErrBadIndex, len(s.Positions), n)
	}
	return nil
}

// Exclusions derives the per-particle nonbonded exclusion lists: directly
// bonded pairs (1-2), angle ends (1-3), and 1-4 pairs, which the bonded
// path already handles with its own scale factors. Each list is sorted and
// deduplicated.
func (s *System) Exclusions() [][]int32 {
	n := len(s.Particles)
	excl := make([][]int32, n)

	add := func(a, b int) {
		excl[a] = append(excl[a], int32(b))
		excl[b] = append(excl[b], int32(a))
	}

	for _, b := range s.Bonds {
		add(b.I, b.J)
	}
	for _, a := range s.Angles {
		add(a.I, a.K)
	}
	for _, p := range s.Pairs14 {
		add(p.I, p.J)
	}

	for i := range excl {
		list := excl[i]
		sort.Slice(list, func(a, b int) bool { return list[a] < list[b] })
		dedup := list[:0]
		var prev int32 = -1
		for _, v := range list {
			if v != prev {
				dedup = append(dedup, v)
				prev = v
			}
		}
		excl[i] = dedup
	}

	return excl
}

// Load reads a system topology from a YAML file.
func Load(path string) (*System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sys := &System{}
	if err := yaml.Unmarshal(data, sys); err != nil {
		return nil, err
	}
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	return sys, nil
}

// Save writes a system topology to a YAML file.
func Save(path string, sys *System) error {
	data, err := yaml.Marshal(sys)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
