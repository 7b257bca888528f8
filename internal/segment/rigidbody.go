package segment

import (
	"math"

	"github.com/motionlab/natmech/internal/linalg"
	"github.com/motionlab/natmech/internal/nat"
)

// restValues are the six metric quantities implied by the shape
// parameters, in the row order of the constraint: u.u, u.v, u.w,
// v.v, v.w, w.w.
func (s *Segment) restValues() [6]float64 {
	l := s.length
	return [6]float64{
		1,
		l * math.Cos(s.gamma),
		math.Cos(s.beta),
		l * l,
		l * math.Cos(s.alpha),
		1,
	}
}

// RigidBodyConstraint returns the six scalar equations Phi_r that
// vanish exactly when Qi is consistent with the segment's rigid
// shape. Every entry is quadratic in Qi; no square roots are taken,
// so the Jacobian stays regular at any configuration.
func (s *Segment) RigidBodyConstraint(b linalg.Backend, qi linalg.Matrix) linalg.Matrix {
	q := nat.Coords(b, qi)
	u, v, w := q.U(), q.V(), q.W()
	rest := s.restValues()

	sc := func(x float64) linalg.Matrix { return b.Const(1, 1, []float64{x}) }
	return b.VCat(
		b.Sub(b.Dot(u, u), sc(rest[0])),
		b.Sub(b.Dot(u, v), sc(rest[1])),
		b.Sub(b.Dot(u, w), sc(rest[2])),
		b.Sub(b.Dot(v, v), sc(rest[3])),
		b.Sub(b.Dot(v, w), sc(rest[4])),
		b.Sub(b.Dot(w, w), sc(rest[5])),
	)
}

// jacobianPattern fills the 6x12 linear form shared by the Jacobian
// and its time derivative: evaluated at Q it is K_r, evaluated at
// Qdot it is K_r_dot.
func jacobianPattern(b linalg.Backend, q nat.SegmentCoordinates) linalg.Matrix {
	u, v, w := q.U(), q.V(), q.W()
	ut := b.Transpose(u)
	vt := b.Transpose(v)
	wt := b.Transpose(w)

	k := b.Zeros(6, 12)
	k = b.SetBlock(k, 0, 0, b.Scale(2, ut))
	k = b.SetBlock(k, 1, 0, vt)
	k = b.SetBlock(k, 1, 3, ut)
	k = b.SetBlock(k, 1, 6, b.Scale(-1, ut))
	k = b.SetBlock(k, 2, 0, wt)
	k = b.SetBlock(k, 2, 9, ut)
	k = b.SetBlock(k, 3, 3, b.Scale(2, vt))
	k = b.SetBlock(k, 3, 6, b.Scale(-2, vt))
	k = b.SetBlock(k, 4, 3, wt)
	k = b.SetBlock(k, 4, 6, b.Scale(-1, wt))
	k = b.SetBlock(k, 4, 9, vt)
	k = b.SetBlock(k, 5, 9, b.Scale(2, wt))
	return k
}

// RigidBodyConstraintJacobian is the closed-form 6x12 derivative of
// the constraint with respect to Qi.
func (s *Segment) RigidBodyConstraintJacobian(b linalg.Backend, qi linalg.Matrix) linalg.Matrix {
	return jacobianPattern(b, nat.Coords(b, qi))
}

// RigidBodyConstraintJacobianDerivative is d/dt of the Jacobian. The
// Jacobian entries are linear in Q, so the derivative is the same
// linear form evaluated at Qdot.
func (s *Segment) RigidBodyConstraintJacobianDerivative(b linalg.Backend, qidot linalg.Matrix) linalg.Matrix {
	return jacobianPattern(b, nat.Coords(b, qidot))
}

// RightHanded reports whether the [u, v, w] frame of the 12 packed
// coordinates has positive determinant. A negative determinant is a
// modeling warning, not an error: the constraints stay valid but the
// frame is mirrored.
func RightHanded(qi []float64) bool {
	u := qi[0:3]
	v := [3]float64{qi[3] - qi[6], qi[4] - qi[7], qi[5] - qi[8]}
	w := qi[9:12]
	det := u[0]*(v[1]*w[2]-v[2]*w[1]) - u[1]*(v[0]*w[2]-v[2]*w[0]) + u[2]*(v[0]*w[1]-v[1]*w[0])
	return det > 0
}
