package system

import "math"

// Chain default parameters, loosely modeled on a united-atom alkane in
// nm / kJ/mol units.
const (
	chainBondLength = 0.153
	chainBondK      = 250000.0
	chainAngle      = 111.0 * math.Pi / 180.0
	chainAngleK     = 500.0
	chainTorsionK   = 5.0
	chainSigma      = 0.39
	chainEpsilon    = 0.6
	chainCharge     = 0.05
)

// Chain builds a linear n-particle chain with bonds between neighbors,
// angles over every consecutive triple, periodic torsions over every
// consecutive quadruple, and 1-4 pairs matching the torsions. Charges
// alternate sign so the Coulomb path has work to do while the chain stays
// neutral for even n. Useful as a self-contained demo and test topology.
func Chain(n int) *System {
	sys := &System{
		Particles: make([]Particle, n),
		Positions: make([]float64, n*3),
	}

	for i := 0; i < n; i++ {
		q := chainCharge
		if i%2 == 1 {
			q = -chainCharge
		}
		sys.Particles[i] = Particle{Charge: q, Sigma: chainSigma, Epsilon: chainEpsilon}

		// Zigzag along x so bonds and angles start at their rest values.
		sys.Positions[i*3] = float64(i) * chainBondLength * math.Sin(chainAngle/2)
		sys.Positions[i*3+1] = float64(i%2) * chainBondLength * math.Cos(chainAngle/2)
		sys.Positions[i*3+2] = 0
	}

	for i := 0; i+1 < n; i++ {
		sys.Bonds = append(sys.Bonds, Bond{I: i, J: i + 1, Length: chainBondLength, K: chainBondK})
	}
	for i := 0; i+2 < n; i++ {
		sys.Angles = append(sys.Angles, Angle{I: i, J: i + 1, K: i + 2, Theta0: chainAngle, Ka: chainAngleK})
	}
	for i := 0; i+3 < n; i++ {
		sys.Torsions = append(sys.Torsions, Torsion{
			I: i, J: i + 1, K: i + 2, L: i + 3,
			Periodicity: 3, Phase: 0, Kphi: chainTorsionK,
		})
		sys.Pairs14 = append(sys.Pairs14, Pair14{I: i, J: i + 3})
	}

	return sys
}
