package engine

import (
	"github.com/chryswoods/openmm/internal/config"
	"github.com/chryswoods/openmm/internal/invmap"
	"github.com/chryswoods/openmm/internal/system"
	"github.com/chryswoods/openmm/internal/terms"
)

// RoleReport compares the observed fan-in of one role against its
// provisioned level count.
type RoleReport struct {
	Role   invmap.Role
	FanIn  int
	Levels int
}

// OK reports whether the provisioned capacity accommodates the topology.
func (r RoleReport) OK() bool { return r.FanIn <= r.Levels }

// Validate computes the per-role capacity report for a topology without
// building the full pipeline. The report is returned even when some role
// overflows, so callers can show every deficit at once.
func Validate(sys *system.System, cfg *config.Config) ([]RoleReport, error) {
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	table := terms.NewTable(sys, cfg.LJ14Scale, cfg.Coulomb14Scale, cfg.MinChunk)
	levels := []int{cfg.Levels.I, cfg.Levels.J, cfg.Levels.K, cfg.Levels.L}

	reports := make([]RoleReport, invmap.NumRoles)
	for r := invmap.RoleI; r < invmap.NumRoles; r++ {
		reports[r] = RoleReport{
			Role:   r,
			FanIn:  invmap.MaxFanIn(table.RoleRefs(r), sys.ParticleCount()),
			Levels: levels[r],
		}
	}

	return reports, nil
}
