package terms

import (
	"math"

	"github.com/chryswoods/openmm/internal/invmap"
	"github.com/chryswoods/openmm/internal/stream"
	"github.com/chryswoods/openmm/internal/system"
)

// CoulombFactor converts charge products to kJ*nm/mol (1/(4*pi*eps0)).
const CoulombFactor = 138.935485

// slotBlock pads the term table so buffer widths stay lane-aligned.
const slotBlock = 16

// pair14 carries precombined 1-4 parameters: qq already includes the
// Coulomb prefactor and scale factor, epsilon the LJ scale factor.
type pair14 struct {
	i, j    int32
	qq      float64
	sigma   float64
	epsilon float64
}

// Table is the capacity-padded bonded term table. Real terms occupy slots
// [1, slots); slot 0 is the reserved sentinel slot and padded slots beyond
// the real term count carry no work.
type Table struct {
	particleCount int
	capacity      int
	slots         int

	bonds    []system.Bond
	angles   []system.Angle
	torsions []system.Torsion
	rbs      []system.RBTorsion
	pairs    []pair14

	bondOff    int
	angleOff   int
	torsionOff int
	rbOff      int
	pairOff    int

	minChunk int
}

// NewTable indexes the bonded terms of sys into a padded slot table.
// lj14Scale and coulomb14Scale reduce the 1-4 pair interactions.
func NewTable(sys *system.System, lj14Scale, coulomb14Scale float64, minChunk int) *Table {
	t := &Table{
		particleCount: sys.ParticleCount(),
		bonds:         sys.Bonds,
		angles:        sys.Angles,
		torsions:      sys.Torsions,
		rbs:           sys.RBTorsions,
		minChunk:      minChunk,
	}
	if t.minChunk <= 0 {
		t.minChunk = 64
	}

	t.bondOff = 1 // slot 0 reserved
	t.angleOff = t.bondOff + len(t.bonds)
	t.torsionOff = t.angleOff + len(t.angles)
	t.rbOff = t.torsionOff + len(t.torsions)
	t.pairOff = t.rbOff + len(t.rbs)
	t.slots = t.pairOff + len(sys.Pairs14)
	t.capacity = stream.PadWidth(t.slots, slotBlock)

	t.pairs = make([]pair14, len(sys.Pairs14))
	for n, p := range sys.Pairs14 {
		pi, pj := sys.Particles[p.I], sys.Particles[p.J]
		t.pairs[n] = pair14{
			i:       int32(p.I),
			j:       int32(p.J),
			qq:      CoulombFactor * coulomb14Scale * pi.Charge * pj.Charge,
			sigma:   0.5 * (pi.Sigma + pj.Sigma),
			epsilon: lj14Scale * math.Sqrt(pi.Epsilon*pj.Epsilon),
		}
	}

	return t
}

// Capacity returns the padded slot count, sentinel slot included. Role
// force arrays must hold one 3-vector per slot.
func (t *Table) Capacity() int { return t.capacity }

// TermCount returns the number of real bonded terms.
func (t *Table) TermCount() int { return t.slots - 1 }

// RoleRefs lists, for one role, every (particle, slot) reference made by a
// real term. This is the input to the inverse map builder; padded slots
// never appear.
func (t *Table) RoleRefs(role invmap.Role) []invmap.Ref {
	var refs []invmap.Ref
	add := func(particle int, slot int) {
		refs = append(refs, invmap.Ref{Particle: particle, Slot: int32(slot)})
	}

	switch role {
	case invmap.RoleI:
		for n, b := range t.bonds {
			add(b.I, t.bondOff+n)
		}
		for n, a := range t.angles {
			add(a.I, t.angleOff+n)
		}
		for n, d := range t.torsions {
			add(d.I, t.torsionOff+n)
		}
		for n, d := range t.rbs {
			add(d.I, t.rbOff+n)
		}
		for n, p := range t.pairs {
			add(int(p.i), t.pairOff+n)
		}
	case invmap.RoleJ:
		for n, b := range t.bonds {
			add(b.J, t.bondOff+n)
		}
		for n, a := range t.angles {
			add(a.J, t.angleOff+n)
		}
		for n, d := range t.torsions {
			add(d.J, t.torsionOff+n)
		}
		for n, d := range t.rbs {
			add(d.J, t.rbOff+n)
		}
	case invmap.RoleK:
		for n, a := range t.angles {
			add(a.K, t.angleOff+n)
		}
		for n, d := range t.torsions {
			add(d.K, t.torsionOff+n)
		}
		for n, d := range t.rbs {
			add(d.K, t.rbOff+n)
		}
	case invmap.RoleL:
		for n, d := range t.torsions {
			add(d.L, t.torsionOff+n)
		}
		for n, d := range t.rbs {
			add(d.L, t.rbOff+n)
		}
		// 1-4 pairs park their second particle in role L, matching how
		// they ride the i/l positions of a four-particle slot.
		for n, p := range t.pairs {
			add(int(p.j), t.pairOff+n)
		}
	}

	return refs
}
