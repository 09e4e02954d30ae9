package terms

import (
	"math"

	"github.com/chryswoods/openmm/internal/invmap"
	"github.com/chryswoods/openmm/internal/stream"
)

// minCrossSq guards near-degenerate geometries (collinear angle arms,
// collinear dihedral axes) where the force direction is undefined.
const minCrossSq = 1e-16

// Evaluate computes every bonded term's role contributions into the role
// force arrays. Each array must hold Capacity() 3-vectors; all are zeroed
// first, which also re-establishes the hard-zero sentinel slot. Slots are
// processed unordered on parallel chunks; no two terms share a slot, so
// writes never conflict.
func (t *Table) Evaluate(positions []float64, roleForce [][]float64) {
	for _, rf := range roleForce {
		stream.Zero(rf)
	}

	fI := roleForce[invmap.RoleI]
	fJ := roleForce[invmap.RoleJ]
	fK := roleForce[invmap.RoleK]
	fL := roleForce[invmap.RoleL]

	stream.ParallelFor(len(t.bonds), t.minChunk, func(start, end int) {
		for n := start; n < end; n++ {
			t.evalBond(n, positions, fI, fJ)
		}
	})
	stream.ParallelFor(len(t.angles), t.minChunk, func(start, end int) {
		for n := start; n < end; n++ {
			t.evalAngle(n, positions, fI, fJ, fK)
		}
	})
	stream.ParallelFor(len(t.torsions), t.minChunk, func(start, end int) {
		for n := start; n < end; n++ {
			t.evalTorsion(n, positions, fI, fJ, fK, fL)
		}
	})
	stream.ParallelFor(len(t.rbs), t.minChunk, func(start, end int) {
		for n := start; n < end; n++ {
			t.evalRBTorsion(n, positions, fI, fJ, fK, fL)
		}
	})
	stream.ParallelFor(len(t.pairs), t.minChunk, func(start, end int) {
		for n := start; n < end; n++ {
			t.evalPair14(n, positions, fI, fL)
		}
	})
}

func (t *Table) evalBond(n int, pos []float64, fI, fJ []float64) {
	b := t.bonds[n]
	slot := (t.bondOff + n) * stream.Stride

	dx := pos[b.I*3] - pos[b.J*3]
	dy := pos[b.I*3+1] - pos[b.J*3+1]
	dz := pos[b.I*3+2] - pos[b.J*3+2]
	r := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if r == 0 {
		return
	}

	f := -b.K * (r - b.Length) / r
	fI[slot] = f * dx
	fI[slot+1] = f * dy
	fI[slot+2] = f * dz
	fJ[slot] = -f * dx
	fJ[slot+1] = -f * dy
	fJ[slot+2] = -f * dz
}

func (t *Table) evalAngle(n int, pos []float64, fI, fJ, fK []float64) {
	a := t.angles[n]
	slot := (t.angleOff + n) * stream.Stride

	// Arms from the vertex J.
	ix := pos[a.I*3] - pos[a.J*3]
	iy := pos[a.I*3+1] - pos[a.J*3+1]
	iz := pos[a.I*3+2] - pos[a.J*3+2]
	kx := pos[a.K*3] - pos[a.J*3]
	ky := pos[a.K*3+1] - pos[a.J*3+1]
	kz := pos[a.K*3+2] - pos[a.J*3+2]

	ri2 := ix*ix + iy*iy + iz*iz
	rk2 := kx*kx + ky*ky + kz*kz
	if ri2 == 0 || rk2 == 0 {
		return
	}
	ri := math.Sqrt(ri2)
	rk := math.Sqrt(rk2)

	c := (ix*kx + iy*ky + iz*kz) / (ri * rk)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	s2 := 1 - c*c
	if s2 < minCrossSq {
		return
	}
	sin := math.Sqrt(s2)

	theta := math.Acos(c)
	common := a.Ka * (theta - a.Theta0) / sin
	rik := ri * rk

	fix := common * (kx/rik - c*ix/ri2)
	fiy := common * (ky/rik - c*iy/ri2)
	fiz := common * (kz/rik - c*iz/ri2)
	fkx := common * (ix/rik - c*kx/rk2)
	fky := common * (iy/rik - c*ky/rk2)
	fkz := common * (iz/rik - c*kz/rk2)

	fI[slot] = fix
	fI[slot+1] = fiy
	fI[slot+2] = fiz
	fK[slot] = fkx
	fK[slot+1] = fky
	fK[slot+2] = fkz
	// Vertex takes the balancing force.
	fJ[slot] = -fix - fkx
	fJ[slot+1] = -fiy - fky
	fJ[slot+2] = -fiz - fkz
}

// dihedral computes the dihedral angle over particles i-j-k-l and the
// geometry needed to distribute a torque dV/dphi onto the four particles.
func dihedral(pos []float64, i, j, k, l int) (phi float64, geom dihedralGeom, ok bool) {
	g := dihedralGeom{}

	g.b1x = pos[j*3] - pos[i*3]
	g.b1y = pos[j*3+1] - pos[i*3+1]
	g.b1z = pos[j*3+2] - pos[i*3+2]
	g.b2x = pos[k*3] - pos[j*3]
	g.b2y = pos[k*3+1] - pos[j*3+1]
	g.b2z = pos[k*3+2] - pos[j*3+2]
	g.b3x = pos[l*3] - pos[k*3]
	g.b3y = pos[l*3+1] - pos[k*3+1]
	g.b3z = pos[l*3+2] - pos[k*3+2]

	// Plane normals.
	g.n1x = g.b1y*g.b2z - g.b1z*g.b2y
	g.n1y = g.b1z*g.b2x - g.b1x*g.b2z
	g.n1z = g.b1x*g.b2y - g.b1y*g.b2x
	g.n2x = g.b2y*g.b3z - g.b2z*g.b3y
	g.n2y = g.b2z*g.b3x - g.b2x*g.b3z
	g.n2z = g.b2x*g.b3y - g.b2y*g.b3x

	g.n1sq = g.n1x*g.n1x + g.n1y*g.n1y + g.n1z*g.n1z
	g.n2sq = g.n2x*g.n2x + g.n2y*g.n2y + g.n2z*g.n2z
	g.b2sq = g.b2x*g.b2x + g.b2y*g.b2y + g.b2z*g.b2z
	if g.n1sq < minCrossSq || g.n2sq < minCrossSq || g.b2sq < minCrossSq {
		return 0, g, false
	}
	g.b2len = math.Sqrt(g.b2sq)

	cx := g.n1y*g.n2z - g.n1z*g.n2y
	cy := g.n1z*g.n2x - g.n1x*g.n2z
	cz := g.n1x*g.n2y - g.n1y*g.n2x
	y := (cx*g.b2x + cy*g.b2y + cz*g.b2z) / g.b2len
	x := g.n1x*g.n2x + g.n1y*g.n2y + g.n1z*g.n2z

	return math.Atan2(y, x), g, true
}

type dihedralGeom struct {
	b1x, b1y, b1z float64
	b2x, b2y, b2z float64
	b3x, b3y, b3z float64
	n1x, n1y, n1z float64
	n2x, n2y, n2z float64
	n1sq, n2sq    float64
	b2sq, b2len   float64
}

// apply distributes dVdphi onto the four role slots. The end forces act
// along the plane normals; the inner particles take the balancing shares,
// so the four contributions sum to zero exactly.
func (g *dihedralGeom) apply(dVdphi float64, slot int, fI, fJ, fK, fL []float64) {
	ci := -dVdphi * g.b2len / g.n1sq
	cl := dVdphi * g.b2len / g.n2sq

	fix := ci * g.n1x
	fiy := ci * g.n1y
	fiz := ci * g.n1z
	flx := cl * g.n2x
	fly := cl * g.n2y
	flz := cl * g.n2z

	p := (g.b1x*g.b2x + g.b1y*g.b2y + g.b1z*g.b2z) / g.b2sq
	q := (g.b3x*g.b2x + g.b3y*g.b2y + g.b3z*g.b2z) / g.b2sq

	svx := p*fix - q*flx
	svy := p*fiy - q*fly
	svz := p*fiz - q*flz

	fI[slot] = fix
	fI[slot+1] = fiy
	fI[slot+2] = fiz
	fJ[slot] = -fix + svx
	fJ[slot+1] = -fiy + svy
	fJ[slot+2] = -fiz + svz
	fK[slot] = -flx - svx
	fK[slot+1] = -fly - svy
	fK[slot+2] = -flz - svz
	fL[slot] = flx
	fL[slot+1] = fly
	fL[slot+2] = flz
}

func (t *Table) evalTorsion(n int, pos []float64, fI, fJ, fK, fL []float64) {
	d := t.torsions[n]
	slot := (t.torsionOff + n) * stream.Stride

	phi, geom, ok := dihedral(pos, d.I, d.J, d.K, d.L)
	if !ok {
		return
	}

	// V = k (1 + cos(n phi - phase))
	dVdphi := -d.Kphi * float64(d.Periodicity) * math.Sin(float64(d.Periodicity)*phi-d.Phase)
	geom.apply(dVdphi, slot, fI, fJ, fK, fL)
}

func (t *Table) evalRBTorsion(n int, pos []float64, fI, fJ, fK, fL []float64) {
	d := t.rbs[n]
	slot := (t.rbOff + n) * stream.Stride

	phi, geom, ok := dihedral(pos, d.I, d.J, d.K, d.L)
	if !ok {
		return
	}

	// V = sum C_m cos(psi)^m with psi = phi - pi, so cos(psi) = -cos(phi).
	cpsi := -math.Cos(phi)
	sphi := math.Sin(phi)
	dVdphi := 0.0
	pow := 1.0
	for m := 1; m < 6; m++ {
		dVdphi += float64(m) * d.C[m] * pow * sphi
		pow *= cpsi
	}
	geom.apply(dVdphi, slot, fI, fJ, fK, fL)
}

func (t *Table) evalPair14(n int, pos []float64, fI, fL []float64) {
	p := t.pairs[n]
	slot := (t.pairOff + n) * stream.Stride
	i, j := int(p.i), int(p.j)

	dx := pos[i*3] - pos[j*3]
	dy := pos[i*3+1] - pos[j*3+1]
	dz := pos[i*3+2] - pos[j*3+2]
	r2 := dx*dx + dy*dy + dz*dz
	if r2 == 0 {
		return
	}
	invR2 := 1 / r2
	invR := math.Sqrt(invR2)

	sig2 := p.sigma * p.sigma * invR2
	sig6 := sig2 * sig2 * sig2
	f := (24*p.epsilon*(2*sig6*sig6-sig6) + p.qq*invR) * invR2

	fI[slot] = f * dx
	fI[slot+1] = f * dy
	fI[slot+2] = f * dz
	fL[slot] = -f * dx
	fL[slot+1] = -f * dy
	fL[slot+2] = -f * dz
}
