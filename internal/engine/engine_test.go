package engine_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chryswoods/openmm/internal/config"
	"github.com/chryswoods/openmm/internal/engine"
	"github.com/chryswoods/openmm/internal/invmap"
	"github.com/chryswoods/openmm/internal/stream"
	"github.com/chryswoods/openmm/internal/system"
)

// star returns a topology where one hub particle carries enough bonds to
// exceed any small level count on the I role.
func star(arms int) *system.System {
	sys := &system.System{
		Particles: make([]system.Particle, arms+1),
		Positions: make([]float64, (arms+1)*3),
	}
	for a := 1; a <= arms; a++ {
		sys.Bonds = append(sys.Bonds, system.Bond{I: 0, J: a, Length: 0.15, K: 1000})
		sys.Positions[a*3] = 0.15 * float64(a)
	}
	return sys
}

var _ = Describe("Engine", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = config.DefaultConfig()
	})

	Describe("construction", func() {
		It("builds a pipeline for a chain topology", func() {
			sys := system.Chain(8)
			eng, err := engine.New(sys, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.ParticleCount()).To(Equal(8))
			Expect(eng.TermCount()).To(Equal(sys.TermCount()))
		})

		It("rejects an empty system", func() {
			_, err := engine.New(&system.System{}, cfg)
			Expect(err).To(MatchError(engine.ErrEmptySystem))
		})

		It("reports a fan-in overflow with role and counts", func() {
			sys := star(cfg.Levels.I + 1)

			_, err := engine.New(sys, cfg)
			Expect(err).To(HaveOccurred())

			var cerr *invmap.ConfigError
			Expect(errors.As(err, &cerr)).To(BeTrue())
			Expect(cerr.Role).To(Equal(invmap.RoleI))
			Expect(cerr.FanIn).To(Equal(cfg.Levels.I + 1))
			Expect(cerr.Levels).To(Equal(cfg.Levels.I))
		})

		It("accepts the same topology once capacity is raised", func() {
			sys := star(cfg.Levels.I + 1)
			cfg.Levels.I = cfg.Levels.I + 1

			_, err := engine.New(sys, cfg)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Forces", func() {
		var (
			sys *system.System
			eng *engine.Engine
		)

		BeforeEach(func() {
			sys = system.Chain(10)
			var err error
			eng, err = engine.New(sys, cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects mis-sized buffers", func() {
			force := stream.Vec3Buffer(10)
			err := eng.Forces(make([]float64, 5), force)
			Expect(err).To(MatchError(engine.ErrDimensionMismatch))

			err = eng.Forces(sys.Positions, make([]float64, 7))
			Expect(err).To(MatchError(engine.ErrDimensionMismatch))
		})

		It("adds to the force buffer instead of overwriting it", func() {
			force := stream.Vec3Buffer(10)
			Expect(eng.Forces(sys.Positions, force)).To(Succeed())
			single := append([]float64(nil), force...)

			Expect(eng.Forces(sys.Positions, force)).To(Succeed())
			for i := range force {
				Expect(force[i]).To(BeNumerically("~", 2*single[i], 1e-9))
			}
		})

		It("conserves momentum on a closed system", func() {
			// Stretch the chain so every term contributes.
			pos := append([]float64(nil), sys.Positions...)
			for i := range pos {
				pos[i] *= 1.15
			}

			force := stream.Vec3Buffer(10)
			Expect(eng.Forces(pos, force)).To(Succeed())

			var sx, sy, sz float64
			for p := 0; p < 10; p++ {
				sx += force[p*3]
				sy += force[p*3+1]
				sz += force[p*3+2]
			}
			net := math.Sqrt(sx*sx + sy*sy + sz*sz)
			Expect(net).To(BeNumerically("<", 1e-6))
		})

		It("is bitwise reproducible across evaluations", func() {
			a := stream.Vec3Buffer(10)
			b := stream.Vec3Buffer(10)
			Expect(eng.Forces(sys.Positions, a)).To(Succeed())
			Expect(eng.Forces(sys.Positions, b)).To(Succeed())
			for i := range a {
				Expect(b[i]).To(Equal(a[i]))
			}
		})
	})

	Describe("Validate", func() {
		It("reports every role even when one overflows", func() {
			sys := star(cfg.Levels.I + 2)

			reports, err := engine.Validate(sys, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(reports).To(HaveLen(invmap.NumRoles))

			Expect(reports[invmap.RoleI].OK()).To(BeFalse())
			Expect(reports[invmap.RoleI].FanIn).To(Equal(cfg.Levels.I + 2))
			Expect(reports[invmap.RoleJ].OK()).To(BeTrue())
		})

		It("passes a modest chain with the default capacities", func() {
			reports, err := engine.Validate(system.Chain(12), cfg)
			Expect(err).NotTo(HaveOccurred())
			for _, r := range reports {
				Expect(r.OK()).To(BeTrue(), "role %s fan-in %d over %d levels", r.Role, r.FanIn, r.Levels)
			}
		})
	})
})
