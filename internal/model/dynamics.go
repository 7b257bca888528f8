package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/motionlab/natmech/internal/force"
	"github.com/motionlab/natmech/internal/linalg"
	"github.com/motionlab/natmech/internal/nat"
	"github.com/motionlab/natmech/internal/segment"
)

// Stabilization holds Baumgarte feedback gains added to the
// acceleration-level constraint equation: Alpha acts on the position
// error Phi, Beta on the velocity error Phi_dot. Zero gains give the
// exact index-3 DAE solve.
type Stabilization struct {
	Alpha float64
	Beta  float64
}

// GravityForces stacks each segment's constant weight contribution.
func (m *Model) GravityForces() (*mat.Dense, error) {
	if m.massMatrix == nil {
		return nil, ErrMassMatrixUndefined
	}
	out := mat.NewDense(m.NbQ(), 1, nil)
	for i, s := range m.segments {
		out.Slice(12*i, 12*(i+1), 0, 1).(*mat.Dense).Copy(s.GravityForce(m.gravity))
	}
	return out, nil
}

// ExternalForces maps a force set into the stacked generalized force
// vector at configuration Q. A nil set contributes zeros.
func (m *Model) ExternalForces(q linalg.Matrix, set *force.Set) linalg.Matrix {
	m.checkQ(q)
	b := m.backend
	out := b.Zeros(m.NbQ(), 1)
	if set == nil {
		return out
	}
	for i, s := range m.segments {
		qi := nat.SegmentOf(b, q, i).Vector()
		for _, w := range set.ForSegment(i) {
			out = b.SetBlock(out, 12*i, 0,
				b.Add(b.Slice(out, 12*i, 12*(i+1), 0, 1), force.Generalized(b, s, w, qi)))
		}
	}
	return out
}

// ForwardDynamics solves the augmented KKT system
//
//	[ G  K^T ] [Qddot]   [ F              ]
//	[ K  0   ] [lambda] = [ -Kdot Qdot (+ stabilization) ]
//
// for the accelerations and the Lagrange multipliers (the generalized
// constraint forces). F is gravity plus the mapped external forces.
// The system is solved once per call with a dense LU factorization;
// an ill-conditioned system surfaces as an error, never as a silent
// approximation.
func (m *Model) ForwardDynamics(q, qdot linalg.Matrix, fext *force.Set, stab *Stabilization) (qddot, lambda linalg.Matrix, err error) {
	m.checkQ(q)
	m.checkQ(qdot)
	if m.massMatrix == nil {
		return nil, nil, ErrMassMatrixUndefined
	}
	b := m.backend
	n := m.NbQ()
	nc := m.NbHolonomicConstraints()

	g := b.Const(n, n, linalg.Floats(m.massMatrix))
	k := m.HolonomicConstraintsJacobian(q)
	kdot := m.HolonomicConstraintsJacobianDerivative(qdot)

	weight, err := m.GravityForces()
	if err != nil {
		return nil, nil, err
	}
	f := b.Add(b.Const(n, 1, linalg.Floats(weight)), m.ExternalForces(q, fext))

	bias := b.Scale(-1, b.MatMul(kdot, qdot))
	if stab != nil && (stab.Alpha != 0 || stab.Beta != 0) {
		phi := m.HolonomicConstraints(q)
		phiDot := b.MatMul(k, qdot)
		bias = b.Sub(bias, b.Add(b.Scale(stab.Alpha, phi), b.Scale(stab.Beta, phiDot)))
	}

	kkt := b.VCat(
		b.HCat(g, b.Transpose(k)),
		b.HCat(k, b.Zeros(nc, nc)),
	)
	rhs := b.VCat(f, bias)

	x, err := b.Solve(kkt, rhs)
	if err != nil {
		return nil, nil, fmt.Errorf("forward dynamics: %w", err)
	}
	return b.Slice(x, 0, n, 0, 1), b.Slice(x, n, n+nc, 0, 1), nil
}

// PotentialEnergy sums the segments' gravitational potential terms.
func (m *Model) PotentialEnergy(q linalg.Matrix) (linalg.Matrix, error) {
	m.checkQ(q)
	b := m.backend
	total := b.Zeros(1, 1)
	for i, s := range m.segments {
		e, err := s.PotentialEnergy(b, nat.SegmentOf(b, q, i).Vector(), m.gravity)
		if err != nil {
			return nil, fmt.Errorf("segment %q: %w", s.Name(), err)
		}
		total = b.Add(total, e)
	}
	return total, nil
}

// KineticEnergy is 1/2 Qdot^T G Qdot; the mass matrix must be
// defined.
func (m *Model) KineticEnergy(qdot linalg.Matrix) (linalg.Matrix, error) {
	m.checkQ(qdot)
	if m.massMatrix == nil {
		return nil, ErrMassMatrixUndefined
	}
	b := m.backend
	g := b.Const(m.NbQ(), m.NbQ(), linalg.Floats(m.massMatrix))
	return b.Scale(0.5, b.MatMul(b.Transpose(qdot), b.MatMul(g, qdot))), nil
}

// OrientationWarnings reports segments whose [u, v, w] frame is
// left-handed at the packed configuration q. Mirrored frames are
// legal but usually indicate an inconsistent initial pose, so this is
// a warning, not an error.
func (m *Model) OrientationWarnings(q []float64) []string {
	var out []string
	for i, s := range m.segments {
		if len(q) < 12*(i+1) {
			break
		}
		if !segment.RightHanded(q[12*i : 12*(i+1)]) {
			out = append(out, fmt.Sprintf("segment %q: [u, v, w] frame is left-handed", s.Name()))
		}
	}
	return out
}

// ValidateInitialState checks that packed coordinates satisfy all
// holonomic constraints within tol.
func (m *Model) ValidateInitialState(q []float64, tol float64) error {
	if len(q) != m.NbQ() {
		return fmt.Errorf("%w: got %d coordinates, want %d", ErrDimension, len(q), m.NbQ())
	}
	phi := m.HolonomicConstraints(m.backend.Const(m.NbQ(), 1, q))
	d, ok := linalg.AsDense(phi)
	if !ok {
		// symbolic substrate: the expression has no free variables
		var err error
		if d, err = linalg.Eval(phi, nil); err != nil {
			return err
		}
	}
	for i := 0; i < m.NbHolonomicConstraints(); i++ {
		if v := d.At(i, 0); v > tol || v < -tol {
			return fmt.Errorf("%w: residual %g at row %d exceeds %g", ErrInitialViolation, v, i, tol)
		}
	}
	return nil
}
