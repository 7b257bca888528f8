package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/motionlab/natmech/internal/joint"
	"github.com/motionlab/natmech/internal/linalg"
	"github.com/motionlab/natmech/internal/model"
	"github.com/motionlab/natmech/internal/nat"
	"github.com/motionlab/natmech/internal/segment"
)

const halfPi = math.Pi / 2

func newRod(t *testing.T, name string) *segment.Segment {
	t.Helper()
	s, err := segment.New(name, 1, halfPi, halfPi, halfPi)
	if err != nil {
		t.Fatalf("segment.New: %v", err)
	}
	i := 1.0 / 12
	err = s.SetInertia(1, [3]float64{0, -0.5, 0}, [3][3]float64{
		{i, 0, 0},
		{0, 0.02, 0},
		{0, 0, i},
	})
	if err != nil {
		t.Fatalf("SetInertia: %v", err)
	}
	return s
}

func rodQ(off float64) []float64 {
	return nat.FromComponents(
		[3]float64{0, 0, 1},
		[3]float64{off, 0, 0},
		[3]float64{off + 1, 0, 0},
		[3]float64{0, -1, 0},
	)
}

func freeRodModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.New()
	if err := m.AddSegment(newRod(t, "rod")); err != nil {
		t.Fatalf("AddSegment: %v", err)
	}
	return m
}

func TestIntegrateOptionValidation(t *testing.T) {
	m := freeRodModel(t)
	q0 := rodQ(0)
	qdot0 := make([]float64, 12)

	if _, err := Integrate(m, q0, qdot0, Options{Dt: 0, Steps: 10}); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("zero dt: got %v", err)
	}
	if _, err := Integrate(m, q0, qdot0, Options{Dt: 0.01, Steps: 0}); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("zero steps: got %v", err)
	}
	if _, err := Integrate(m, q0[:6], qdot0, Options{Dt: 0.01, Steps: 10}); err == nil {
		t.Error("short state accepted")
	}
}

func TestIntegrateRejectsSymbolicBackend(t *testing.T) {
	m := model.New(model.WithBackend(linalg.NewSymbolic()))
	if err := m.AddSegment(newRod(t, "rod")); err != nil {
		t.Fatalf("AddSegment: %v", err)
	}
	_, err := Integrate(m, rodQ(0), make([]float64, 12), Options{Dt: 0.01, Steps: 1})
	if err == nil {
		t.Error("symbolic backend accepted")
	}
}

// A free rod translates rigidly under gravity; RK4 integrates the
// constant-acceleration motion exactly.
func TestIntegrateFreeFall(t *testing.T) {
	m := freeRodModel(t)

	res, err := Integrate(m, rodQ(0), make([]float64, 12), Options{Dt: 0.01, Steps: 100})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	q, qdot := res.State(len(res.States) - 1)
	// z(1) = -g/2, vz(1) = -g
	if math.Abs(q[5]-(-4.905)) > 1e-9 {
		t.Errorf("rp z: got %g, want -4.905", q[5])
	}
	if math.Abs(qdot[5]-(-9.81)) > 1e-9 {
		t.Errorf("rp vz: got %g, want -9.81", qdot[5])
	}
	// direction vectors untouched by a pure translation
	for _, i := range []int{0, 1, 2, 9, 10, 11} {
		if math.Abs(q[i]-rodQ(0)[i]) > 1e-9 {
			t.Errorf("direction coordinate %d drifted: %g", i, q[i])
		}
	}
	if res.Drift[len(res.Drift)-1] > 1e-9 {
		t.Errorf("drift: got %g", res.Drift[len(res.Drift)-1])
	}
}

func TestIntegratePendulumDriftBounded(t *testing.T) {
	m := model.New()
	rod := newRod(t, "rod")
	if err := m.AddSegment(rod); err != nil {
		t.Fatalf("AddSegment: %v", err)
	}
	pivot, err := joint.NewGroundHinge("pivot", rod, [3]float64{},
		[]nat.CartesianAxis{nat.CartesianX, nat.CartesianZ},
		[]nat.Axis{nat.AxisW, nat.AxisW},
		[]float64{halfPi, halfPi})
	if err != nil {
		t.Fatalf("NewGroundHinge: %v", err)
	}
	if err := m.AddJoint(pivot); err != nil {
		t.Fatalf("AddJoint: %v", err)
	}

	res, err := Integrate(m, rodQ(0), make([]float64, 12), Options{
		Dt:                   0.005,
		Steps:                400,
		NormalizeUnitVectors: true,
		Stabilization:        &model.Stabilization{Alpha: 20, Beta: 10},
	})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	for i, d := range res.Drift {
		if d > 1e-3 {
			t.Fatalf("drift %g at sample %d exceeds bound", d, i)
		}
	}

	// the pivoted end must stay at the origin
	q, _ := res.State(len(res.States) - 1)
	for d := 3; d < 6; d++ {
		if math.Abs(q[d]) > 1e-3 {
			t.Errorf("rp component %d: got %g, want 0", d-3, q[d])
		}
	}
	// released horizontally, the free end must pass near the bottom
	// of the swing at some point
	lowest := 0.0
	for i := range res.States {
		qi, _ := res.State(i)
		if qi[8] < lowest {
			lowest = qi[8]
		}
	}
	if lowest > -0.9 {
		t.Errorf("lowest distal z: got %g, expected a full swing", lowest)
	}
}

func TestIntegrateConstantLengthLink(t *testing.T) {
	m := model.New()
	upper := newRod(t, "upper")
	bob := newRod(t, "bob")
	for _, s := range []*segment.Segment{upper, bob} {
		if err := m.AddSegment(s); err != nil {
			t.Fatalf("AddSegment: %v", err)
		}
	}
	pivot, err := joint.NewGroundHinge("pivot", upper, [3]float64{},
		[]nat.CartesianAxis{nat.CartesianX, nat.CartesianZ},
		[]nat.Axis{nat.AxisW, nat.AxisW},
		[]float64{halfPi, halfPi})
	if err != nil {
		t.Fatalf("NewGroundHinge: %v", err)
	}
	tether, err := joint.NewConstantLength("tether", upper, bob, 1)
	if err != nil {
		t.Fatalf("NewConstantLength: %v", err)
	}
	for _, j := range []*joint.Joint{pivot, tether} {
		if err := m.AddJoint(j); err != nil {
			t.Fatalf("AddJoint: %v", err)
		}
	}

	// bob's proximal end starts one rest length from upper's distal end
	q0 := append(rodQ(0), rodQ(2)...)
	res, err := Integrate(m, q0, make([]float64, 24), Options{
		Dt:                   0.002,
		Steps:                500,
		NormalizeUnitVectors: true,
		Stabilization:        &model.Stabilization{Alpha: 20, Beta: 10},
	})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	// the tether length must hold throughout the swing
	for i := range res.States {
		q, _ := res.State(i)
		dx := q[12+3] - q[6]
		dy := q[12+4] - q[7]
		dz := q[12+5] - q[8]
		gap := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if math.Abs(gap-1) > 1e-2 {
			t.Fatalf("tether length %g at sample %d", gap, i)
		}
	}
}

func TestResultState(t *testing.T) {
	r := &Result{
		Times:  []float64{0},
		States: [][]float64{{1, 2, 3, 4}},
	}
	q, qdot := r.State(0)
	if len(q) != 2 || len(qdot) != 2 || q[0] != 1 || qdot[0] != 3 {
		t.Errorf("State split: q=%v qdot=%v", q, qdot)
	}
}
