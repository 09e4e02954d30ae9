package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/chryswoods/openmm/internal/stream"
)

// Metric observes force buffers across evaluation steps.
type Metric interface {
	Name() string
	Observe(force []float64)
	Value() float64
	Reset()
}

// NetForce tracks the magnitude of the summed force vector. For a closed
// system every internal interaction cancels pairwise, so anything beyond
// rounding noise means contributions were lost or double counted.
type NetForce struct {
	name  string
	worst float64
}

func NewNetForce() *NetForce {
	return &NetForce{name: "net_force"}
}

func (m *NetForce) Name() string { return m.name }

func (m *NetForce) Observe(force []float64) {
	var sx, sy, sz float64
	for p := 0; p*stream.Stride < len(force); p++ {
		sx += force[p*stream.Stride]
		sy += force[p*stream.Stride+1]
		sz += force[p*stream.Stride+2]
	}
	mag := math.Sqrt(sx*sx + sy*sy + sz*sz)
	if mag > m.worst {
		m.worst = mag
	}
}

func (m *NetForce) Value() float64 { return m.worst }
func (m *NetForce) Reset()         { m.worst = 0 }

// MaxForce tracks the largest per-particle force magnitude seen.
type MaxForce struct {
	name string
	max  float64
}

func NewMaxForce() *MaxForce {
	return &MaxForce{name: "max_force"}
}

func (m *MaxForce) Name() string { return m.name }

func (m *MaxForce) Observe(force []float64) {
	if v := MaxMagnitude(force); v > m.max {
		m.max = v
	}
}

func (m *MaxForce) Value() float64 { return m.max }
func (m *MaxForce) Reset()         { m.max = 0 }

// RMSForce tracks the root-mean-square force component over all observed
// steps.
type RMSForce struct {
	name    string
	sumSq   float64
	samples int
}

func NewRMSForce() *RMSForce {
	return &RMSForce{name: "rms_force"}
}

func (m *RMSForce) Name() string { return m.name }

func (m *RMSForce) Observe(force []float64) {
	norm := floats.Norm(force, 2)
	m.sumSq += norm * norm
	m.samples += len(force)
}

func (m *RMSForce) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *RMSForce) Reset() {
	m.sumSq = 0
	m.samples = 0
}

// MaxMagnitude returns the largest 3-vector magnitude in a force buffer.
func MaxMagnitude(force []float64) float64 {
	max := 0.0
	for p := 0; p*stream.Stride < len(force); p++ {
		fx := force[p*stream.Stride]
		fy := force[p*stream.Stride+1]
		fz := force[p*stream.Stride+2]
		if v := fx*fx + fy*fy + fz*fz; v > max {
			max = v
		}
	}
	return math.Sqrt(max)
}
