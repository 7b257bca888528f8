package joint

import (
	"errors"
	"math"
	"testing"

	"github.com/motionlab/natmech/internal/linalg"
	"github.com/motionlab/natmech/internal/nat"
	"github.com/motionlab/natmech/internal/segment"
)

const halfPi = math.Pi / 2

func testSegment(t *testing.T, name string) *segment.Segment {
	t.Helper()
	s, err := segment.New(name, 1, halfPi, halfPi, halfPi)
	if err != nil {
		t.Fatalf("segment.New: %v", err)
	}
	return s
}

// horizontal rod along global x, proximal at x = off
func rodQ(off float64) []float64 {
	return nat.FromComponents(
		[3]float64{0, 0, 1},
		[3]float64{off, 0, 0},
		[3]float64{off + 1, 0, 0},
		[3]float64{0, -1, 0},
	)
}

func TestArity(t *testing.T) {
	parent := testSegment(t, "parent")
	child := testSegment(t, "child")

	mustJoint := func(j *Joint, err error) *Joint {
		t.Helper()
		if err != nil {
			t.Fatalf("constructor: %v", err)
		}
		return j
	}

	cases := []struct {
		joint *Joint
		want  int
	}{
		{mustJoint(NewSpherical("s", parent, child)), 3},
		{mustJoint(NewUniversal("u", parent, child, nat.AxisU, nat.AxisW, halfPi)), 4},
		{mustJoint(NewHinge("h", parent, child,
			[]nat.Axis{nat.AxisU, nat.AxisV}, []nat.Axis{nat.AxisW, nat.AxisW}, []float64{halfPi, halfPi})), 5},
		{mustJoint(NewConstantLength("c", parent, child, 1)), 1},
		{mustJoint(NewGroundSpherical("gs", child, [3]float64{})), 3},
		{mustJoint(NewGroundWeld("w", child, rodQ(0))), 12},
		{mustJoint(NewGroundFree("f", child)), 0},
	}
	for _, tc := range cases {
		if got := tc.joint.Arity(); got != tc.want {
			t.Errorf("%s: arity %d, want %d", tc.joint.Kind(), got, tc.want)
		}
	}
}

func TestKindGround(t *testing.T) {
	grounded := []Kind{GroundSpherical, GroundUniversal, GroundHinge, GroundWeld, GroundFree}
	for _, k := range grounded {
		if !k.Ground() {
			t.Errorf("%s should be ground-anchored", k)
		}
	}
	for _, k := range []Kind{Spherical, Universal, Hinge, ConstantLength, SphereOnPlane} {
		if k.Ground() {
			t.Errorf("%s should not be ground-anchored", k)
		}
	}
}

func TestConstructorValidation(t *testing.T) {
	parent := testSegment(t, "parent")
	child := testSegment(t, "child")

	if _, err := NewSpherical("s", nil, child); !errors.Is(err, ErrBadParams) {
		t.Errorf("nil parent: got %v", err)
	}
	if _, err := NewHinge("h", parent, child, []nat.Axis{nat.AxisU}, []nat.Axis{nat.AxisW, nat.AxisW}, []float64{0, 0}); !errors.Is(err, ErrBadParams) {
		t.Errorf("short parent axes: got %v", err)
	}
	if _, err := NewConstantLength("c", parent, child, -1); !errors.Is(err, ErrBadParams) {
		t.Errorf("negative length: got %v", err)
	}
	if _, err := NewGroundWeld("w", child, []float64{1, 2, 3}); !errors.Is(err, ErrBadParams) {
		t.Errorf("short weld target: got %v", err)
	}
}

func TestSphereOnPlaneUnimplemented(t *testing.T) {
	parent := testSegment(t, "parent")
	child := testSegment(t, "child")
	if _, err := NewSphereOnPlane("p", parent, child); !errors.Is(err, ErrUnimplemented) {
		t.Errorf("expected ErrUnimplemented, got %v", err)
	}
}

func TestSphericalConstraint(t *testing.T) {
	b := linalg.NewDense()
	parent := testSegment(t, "parent")
	child := testSegment(t, "child")
	j, err := NewSpherical("s", parent, child)
	if err != nil {
		t.Fatalf("NewSpherical: %v", err)
	}

	// coincident: parent distal == child proximal
	qp := b.Const(12, 1, rodQ(0))
	qc := b.Const(12, 1, rodQ(1))
	for i, v := range linalg.Floats(j.Constraint(b, qp, qc)) {
		if math.Abs(v) > 1e-12 {
			t.Errorf("residual %d: got %g, want 0", i, v)
		}
	}

	// separated by 0.5 along x
	qc = b.Const(12, 1, rodQ(1.5))
	phi := linalg.Floats(j.Constraint(b, qp, qc))
	if math.Abs(phi[0]-(-0.5)) > 1e-12 {
		t.Errorf("gap residual: got %g, want -0.5", phi[0])
	}
}

func TestSphericalJacobianBlocks(t *testing.T) {
	b := linalg.NewDense()
	parent := testSegment(t, "parent")
	child := testSegment(t, "child")
	j, err := NewSpherical("s", parent, child)
	if err != nil {
		t.Fatalf("NewSpherical: %v", err)
	}

	qp := b.Const(12, 1, rodQ(0))
	qc := b.Const(12, 1, rodQ(1))
	kp, kc := j.ConstraintJacobian(b, qp, qc)

	// phi = rd_p - rp_c, so d(phi)/dQ is I on the parent rd block and
	// -I on the child rp block
	fp := linalg.Floats(kp)
	fc := linalg.Floats(kc)
	for d := 0; d < 3; d++ {
		if fp[d*12+6+d] != 1 {
			t.Errorf("parent block (%d): got %g, want 1", d, fp[d*12+6+d])
		}
		if fc[d*12+3+d] != -1 {
			t.Errorf("child block (%d): got %g, want -1", d, fc[d*12+3+d])
		}
	}
}

func TestHingeConstraint(t *testing.T) {
	b := linalg.NewDense()
	parent := testSegment(t, "parent")
	child := testSegment(t, "child")
	j, err := NewHinge("h", parent, child,
		[]nat.Axis{nat.AxisU, nat.AxisV}, []nat.Axis{nat.AxisW, nat.AxisW}, []float64{halfPi, halfPi})
	if err != nil {
		t.Fatalf("NewHinge: %v", err)
	}

	qp := b.Const(12, 1, rodQ(0))
	qc := b.Const(12, 1, rodQ(1))
	for i, v := range linalg.Floats(j.Constraint(b, qp, qc)) {
		if math.Abs(v) > 1e-12 {
			t.Errorf("residual %d: got %g, want 0", i, v)
		}
	}
}

// The angle rows are bilinear in (qp, qc): each evaluates to the same
// axis dot product whether contracted through the parent or the child
// block.
func TestHingeJacobianBilinear(t *testing.T) {
	b := linalg.NewDense()
	parent := testSegment(t, "parent")
	child := testSegment(t, "child")
	j, err := NewHinge("h", parent, child,
		[]nat.Axis{nat.AxisU, nat.AxisV}, []nat.Axis{nat.AxisW, nat.AxisW}, []float64{halfPi, halfPi})
	if err != nil {
		t.Fatalf("NewHinge: %v", err)
	}

	// generic, non-reference configurations
	qp := b.Const(12, 1, []float64{0.9, 0.1, -0.2, 1.1, 0.4, 0.3, 0.8, -0.9, 0.5, 0.2, 0.95, -0.1})
	qc := b.Const(12, 1, []float64{0.1, 0.8, 0.2, 2.0, 0.3, 0.1, 1.9, -0.6, 0.4, -0.3, 0.2, 0.9})

	kp, kc := j.ConstraintJacobian(b, qp, qc)
	viaParent := linalg.Floats(b.MatMul(kp, qp))
	viaChild := linalg.Floats(b.MatMul(kc, qc))
	for _, row := range []int{3, 4} {
		if math.Abs(viaParent[row]-viaChild[row]) > 1e-12 {
			t.Errorf("row %d: parent contraction %g, child contraction %g", row, viaParent[row], viaChild[row])
		}
	}
}

func TestConstantLengthConstraint(t *testing.T) {
	b := linalg.NewDense()
	parent := testSegment(t, "parent")
	child := testSegment(t, "child")
	j, err := NewConstantLength("c", parent, child, 2)
	if err != nil {
		t.Fatalf("NewConstantLength: %v", err)
	}

	// parent distal at (1,0,0), child proximal at (3,0,0): gap length 2
	qp := b.Const(12, 1, rodQ(0))
	qc := b.Const(12, 1, rodQ(3))
	phi := linalg.Floats(j.Constraint(b, qp, qc))
	if math.Abs(phi[0]) > 1e-12 {
		t.Errorf("at rest length: got %g, want 0", phi[0])
	}

	// gap length 3: 9 - 4 = 5
	qc = b.Const(12, 1, rodQ(4))
	phi = linalg.Floats(j.Constraint(b, qp, qc))
	if math.Abs(phi[0]-5) > 1e-12 {
		t.Errorf("stretched: got %g, want 5", phi[0])
	}
}

// The constraint is quadratic in the anchor gap, so the second-order
// expansion in a child perturbation is exact:
// phi(qc+d) - phi(qc) = Kc d + |Nc d|^2.
func TestConstantLengthJacobianExactExpansion(t *testing.T) {
	b := linalg.NewDense()
	parent := testSegment(t, "parent")
	child := testSegment(t, "child")
	j, err := NewConstantLength("c", parent, child, 2)
	if err != nil {
		t.Fatalf("NewConstantLength: %v", err)
	}

	qp := b.Const(12, 1, rodQ(0))
	qc := b.Const(12, 1, rodQ(3))
	delta := []float64{0.1, -0.2, 0.3, 0.05, 0.4, -0.1, 0.2, 0.1, -0.3, 0.0, 0.2, 0.1}
	qcd := b.Const(12, 1, delta)

	_, kc := j.ConstraintJacobian(b, qp, qc)
	linear := linalg.Floats(b.MatMul(kc, qcd))[0]

	step := b.MatMul(nat.Proximal.Interpolation(b), qcd)
	quad := linalg.Floats(b.Dot(step, step))[0]

	phi0 := linalg.Floats(j.Constraint(b, qp, qc))[0]
	phi1 := linalg.Floats(j.Constraint(b, qp, b.Add(qc, qcd)))[0]
	if math.Abs((phi1-phi0)-(linear+quad)) > 1e-12 {
		t.Errorf("expansion mismatch: delta phi %g, linear+quad %g", phi1-phi0, linear+quad)
	}
}

func TestGroundSphericalConstraint(t *testing.T) {
	b := linalg.NewDense()
	child := testSegment(t, "child")
	j, err := NewGroundSpherical("g", child, [3]float64{0, 0, 0})
	if err != nil {
		t.Fatalf("NewGroundSpherical: %v", err)
	}

	qc := b.Const(12, 1, rodQ(0))
	for i, v := range linalg.Floats(j.Constraint(b, nil, qc)) {
		if math.Abs(v) > 1e-12 {
			t.Errorf("residual %d: got %g, want 0", i, v)
		}
	}

	kp, kc := j.ConstraintJacobian(b, nil, qc)
	if kp != nil {
		t.Error("ground joint must have no parent block")
	}
	if r, c := kc.Dims(); r != 3 || c != 12 {
		t.Errorf("child block dims: %dx%d", r, c)
	}
}

func TestGroundHingeConstraint(t *testing.T) {
	b := linalg.NewDense()
	child := testSegment(t, "child")
	j, err := NewGroundHinge("g", child, [3]float64{0, 0, 0},
		[]nat.CartesianAxis{nat.CartesianX, nat.CartesianZ},
		[]nat.Axis{nat.AxisW, nat.AxisW},
		[]float64{halfPi, halfPi})
	if err != nil {
		t.Fatalf("NewGroundHinge: %v", err)
	}

	// w = (0,-1,0) is orthogonal to both x and z
	qc := b.Const(12, 1, rodQ(0))
	for i, v := range linalg.Floats(j.Constraint(b, nil, qc)) {
		if math.Abs(v) > 1e-12 {
			t.Errorf("residual %d: got %g, want 0", i, v)
		}
	}
}

func TestGroundWeldConstraint(t *testing.T) {
	b := linalg.NewDense()
	child := testSegment(t, "child")
	target := rodQ(0)
	j, err := NewGroundWeld("g", child, target)
	if err != nil {
		t.Fatalf("NewGroundWeld: %v", err)
	}

	qc := b.Const(12, 1, target)
	for i, v := range linalg.Floats(j.Constraint(b, nil, qc)) {
		if v != 0 {
			t.Errorf("residual %d: got %g, want 0", i, v)
		}
	}

	// displaced child: phi = target - qc
	moved := rodQ(0.5)
	phi := linalg.Floats(j.Constraint(b, nil, b.Const(12, 1, moved)))
	for i := range phi {
		if math.Abs(phi[i]-(target[i]-moved[i])) > 1e-12 {
			t.Errorf("residual %d: got %g, want %g", i, phi[i], target[i]-moved[i])
		}
	}
}

func TestGroundFreeContributesNothing(t *testing.T) {
	b := linalg.NewDense()
	child := testSegment(t, "child")
	j, err := NewGroundFree("g", child)
	if err != nil {
		t.Fatalf("NewGroundFree: %v", err)
	}

	if phi := j.Constraint(b, nil, b.Const(12, 1, rodQ(0))); phi != nil {
		t.Error("expected nil constraint")
	}
	kp, kc := j.ConstraintJacobian(b, nil, b.Const(12, 1, rodQ(0)))
	if kp != nil || kc != nil {
		t.Error("expected nil jacobian blocks")
	}
}
