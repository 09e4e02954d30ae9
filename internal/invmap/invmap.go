package invmap

import (
	"errors"
	"fmt"
)

// Sentinel is the reserved term slot that every unused level entry points
// at. Role force arrays keep slot 0 hard zero so a sentinel gather
// contributes nothing.
const Sentinel int32 = 0

// MaxLevels bounds the provisioned level count per role.
const MaxLevels = 8

// ErrLevelCount indicates a provisioned level count outside [1, MaxLevels].
var ErrLevelCount = errors.New("invmap: level count out of range")

// ConfigError reports a particle referenced by more terms than the
// provisioned level count for a role. It is fatal at setup: growing the map
// mid-run or silently dropping contributions would both be wrong.
type ConfigError struct {
	Role   Role
	FanIn  int // observed maximum references to a single particle
	Levels int // provisioned level count
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invmap: role %s fan-in %d exceeds %d provisioned levels",
		e.Role, e.FanIn, e.Levels)
}

// Map holds the per-level slot indices for one role. Each level is a dense
// array indexed by particle id; entries are term slots or Sentinel.
type Map struct {
	role   Role
	levels [][]int32
}

func (m *Map) Role() Role { return m.role }

// Levels returns the provisioned level count.
func (m *Map) Levels() int { return len(m.levels) }

// Level returns the slot array for level l. The returned slice is read-only
// during accumulation.
func (m *Map) Level(l int) []int32 { return m.levels[l] }

// MaxFanIn returns the largest number of references to any single particle.
func MaxFanIn(refs []Ref, particleCount int) int {
	counts := make([]int, particleCount)
	max := 0
	for _, ref := range refs {
		counts[ref.Particle]++
		if counts[ref.Particle] > max {
			max = counts[ref.Particle]
		}
	}
	return max
}

// Build constructs the inverse map for one role. Every reference lands in
// exactly one level, assigned in input order per particle; remaining level
// entries stay at Sentinel. Build fails with a *ConfigError when any
// particle's fan-in exceeds the provisioned level count.
func Build(role Role, refs []Ref, particleCount, levels int) (*Map, error) {
	if levels < 1 || levels > MaxLevels {
		return nil, fmt.Errorf("%w: role %s levels=%d", ErrLevelCount, role, levels)
	}

	m := &Map{
		role:   role,
		levels: make([][]int32, levels),
	}
	for l := range m.levels {
		m.levels[l] = make([]int32, particleCount)
	}

	depth := make([]int, particleCount)
	for _, ref := range refs {
		d := depth[ref.Particle]
		if d >= levels {
			return nil, &ConfigError{Role: role, FanIn: MaxFanIn(refs, particleCount), Levels: levels}
		}
		m.levels[d][ref.Particle] = ref.Slot
		depth[ref.Particle] = d + 1
	}

	return m, nil
}
