// Package scenario builds ready-to-integrate models from a scenario
// configuration. Each scenario assembles segments and joints in a
// reference configuration with a consistent initial state.
package scenario

import (
	"fmt"
	"math"
	"sort"

	"github.com/motionlab/natmech/internal/config"
	"github.com/motionlab/natmech/internal/joint"
	"github.com/motionlab/natmech/internal/model"
	"github.com/motionlab/natmech/internal/nat"
	"github.com/motionlab/natmech/internal/segment"
)

type builder func(cfg *config.Config) (*model.Model, []float64, []float64, error)

var builders = map[string]builder{
	"pendulum":        buildPendulum,
	"double_pendulum": buildDoublePendulum,
	"chain":           buildChain,
}

// List returns the known scenario names, sorted.
func List() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build assembles the scenario named in cfg and returns the model
// together with the packed initial coordinates and velocities.
func Build(cfg *config.Config) (*model.Model, []float64, []float64, error) {
	b, ok := builders[cfg.Scenario]
	if !ok {
		return nil, nil, nil, fmt.Errorf("scenario: unknown scenario %q (available: %v)", cfg.Scenario, List())
	}
	return b(cfg)
}

// rodSegment makes a uniform thin rod of the given length and mass,
// with its center of mass halfway along the proximal-distal axis.
func rodSegment(name string, length, mass float64) (*segment.Segment, error) {
	s, err := segment.New(name, length, math.Pi/2, math.Pi/2, math.Pi/2)
	if err != nil {
		return nil, err
	}
	// small axial inertia keeps the spin mode from being massless
	ixx := mass * length * length / 12
	iyy := mass * length * length / 50
	err = s.SetInertia(mass, [3]float64{0, -length / 2, 0}, [3][3]float64{
		{ixx, 0, 0},
		{0, iyy, 0},
		{0, 0, ixx},
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// rodState is the natural state of the i-th rod in a horizontal chain
// along global x: proximal at i*length, distal one length further.
func rodState(i int, length float64) []float64 {
	x := float64(i) * length
	return nat.FromComponents(
		[3]float64{0, 0, 1},
		[3]float64{x, 0, 0},
		[3]float64{x + length, 0, 0},
		[3]float64{0, -1, 0},
	)
}

// buildPendulum hinges a single rod to the ground at the origin,
// swinging in the x-z plane about the global y axis.
func buildPendulum(cfg *config.Config) (*model.Model, []float64, []float64, error) {
	m := model.New()

	rod, err := rodSegment("rod", cfg.Length, cfg.Mass)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := m.AddSegment(rod); err != nil {
		return nil, nil, nil, err
	}

	pivot, err := joint.NewGroundHinge("pivot", rod, [3]float64{0, 0, 0},
		[]nat.CartesianAxis{nat.CartesianX, nat.CartesianZ},
		[]nat.Axis{nat.AxisW, nat.AxisW},
		[]float64{math.Pi / 2, math.Pi / 2})
	if err != nil {
		return nil, nil, nil, err
	}
	if err := m.AddJoint(pivot); err != nil {
		return nil, nil, nil, err
	}

	q0 := rodState(0, cfg.Length)
	return m, q0, make([]float64, len(q0)), nil
}

// buildDoublePendulum chains two rods with a hinge so the motion stays
// in the x-z plane.
func buildDoublePendulum(cfg *config.Config) (*model.Model, []float64, []float64, error) {
	m := model.New()

	upper, err := rodSegment("upper", cfg.Length, cfg.Mass)
	if err != nil {
		return nil, nil, nil, err
	}
	lower, err := rodSegment("lower", cfg.Length, cfg.Mass)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := m.AddSegment(upper); err != nil {
		return nil, nil, nil, err
	}
	if err := m.AddSegment(lower); err != nil {
		return nil, nil, nil, err
	}

	pivot, err := joint.NewGroundHinge("pivot", upper, [3]float64{0, 0, 0},
		[]nat.CartesianAxis{nat.CartesianX, nat.CartesianZ},
		[]nat.Axis{nat.AxisW, nat.AxisW},
		[]float64{math.Pi / 2, math.Pi / 2})
	if err != nil {
		return nil, nil, nil, err
	}
	// lock the lower rod's w parallel to the upper rod's w
	elbow, err := joint.NewHinge("elbow", upper, lower,
		[]nat.Axis{nat.AxisU, nat.AxisV},
		[]nat.Axis{nat.AxisW, nat.AxisW},
		[]float64{math.Pi / 2, math.Pi / 2})
	if err != nil {
		return nil, nil, nil, err
	}
	for _, j := range []*joint.Joint{pivot, elbow} {
		if err := m.AddJoint(j); err != nil {
			return nil, nil, nil, err
		}
	}

	q0 := append(rodState(0, cfg.Length), rodState(1, cfg.Length)...)
	return m, q0, make([]float64, len(q0)), nil
}

// buildChain links cfg.Segments rods with spherical joints, the first
// one pinned to the origin. The chain is free to leave the plane.
func buildChain(cfg *config.Config) (*model.Model, []float64, []float64, error) {
	m := model.New()

	rods := make([]*segment.Segment, cfg.Segments)
	for i := range rods {
		rod, err := rodSegment(fmt.Sprintf("link%d", i), cfg.Length, cfg.Mass)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := m.AddSegment(rod); err != nil {
			return nil, nil, nil, err
		}
		rods[i] = rod
	}

	root, err := joint.NewGroundSpherical("root", rods[0], [3]float64{0, 0, 0})
	if err != nil {
		return nil, nil, nil, err
	}
	if err := m.AddJoint(root); err != nil {
		return nil, nil, nil, err
	}
	for i := 1; i < len(rods); i++ {
		link, err := joint.NewSpherical(fmt.Sprintf("link%d_%d", i-1, i), rods[i-1], rods[i])
		if err != nil {
			return nil, nil, nil, err
		}
		if err := m.AddJoint(link); err != nil {
			return nil, nil, nil, err
		}
	}

	q0 := make([]float64, 0, 12*cfg.Segments)
	for i := range rods {
		q0 = append(q0, rodState(i, cfg.Length)...)
	}
	return m, q0, make([]float64, len(q0)), nil
}
