package joint

import (
	"math"

	"github.com/motionlab/natmech/internal/linalg"
	"github.com/motionlab/natmech/internal/nat"
)

// Constraint evaluates the joint's constraint equations Phi_k. For
// ground variants qp must be nil; GroundFree returns nil (no rows).
func (j *Joint) Constraint(b linalg.Backend, qp, qc linalg.Matrix) linalg.Matrix {
	c := nat.Coords(b, qc)

	switch j.kind {
	case Spherical:
		p := nat.Coords(b, qp)
		return b.Sub(p.Rd(), c.Rp())

	case Universal, Hinge:
		p := nat.Coords(b, qp)
		parts := []linalg.Matrix{b.Sub(p.Rd(), c.Rp())}
		for i := range j.theta {
			dot := b.Dot(p.Axis(j.parentAxes[i]), c.Axis(j.childAxes[i]))
			parts = append(parts, b.Sub(dot, b.Const(1, 1, []float64{math.Cos(j.theta[i])})))
		}
		return b.VCat(parts...)

	case ConstantLength:
		d := j.anchorGap(b, qp, qc)
		return b.Sub(b.Dot(d, d), b.Const(1, 1, []float64{j.length * j.length}))

	case GroundSpherical:
		return b.Sub(j.anchor(b), c.Rp())

	case GroundUniversal, GroundHinge:
		parts := []linalg.Matrix{b.Sub(j.anchor(b), c.Rp())}
		for i := range j.theta {
			e := j.groundAxes[i].Unit()
			dot := b.Dot(linalg.Vec3(b, e[0], e[1], e[2]), c.Axis(j.childAxes[i]))
			parts = append(parts, b.Sub(dot, b.Const(1, 1, []float64{math.Cos(j.theta[i])})))
		}
		return b.VCat(parts...)

	case GroundWeld:
		return b.Sub(b.Const(12, 1, j.weldTarget), qc)

	case GroundFree:
		return nil
	}
	panic("joint: unreachable kind " + j.kind.String())
}

// ConstraintJacobian returns the parent and child blocks of the
// constraint Jacobian, each assignable at the owning segment's column
// offset. The parent block is nil for ground variants: absence of a
// contribution, not a zero block.
func (j *Joint) ConstraintJacobian(b linalg.Backend, qp, qc linalg.Matrix) (parent, child linalg.Matrix) {
	m := j.Arity()

	switch j.kind {
	case Spherical:
		return j.sphericalBlocks(b, m)

	case Universal, Hinge:
		kp, kc := j.sphericalBlocks(b, m)
		for i := range j.theta {
			np := nat.AxisVector(j.parentAxes[i]).RotInterpolation(b)
			nc := nat.AxisVector(j.childAxes[i]).RotInterpolation(b)
			// bilinear form: d(a.Mb)/da plugs in the other side's value
			kp = b.SetBlock(kp, 3+i, 0, b.MatMul(b.Transpose(b.MatMul(nc, qc)), np))
			kc = b.SetBlock(kc, 3+i, 0, b.MatMul(b.Transpose(b.MatMul(np, qp)), nc))
		}
		return kp, kc

	case ConstantLength:
		d := j.anchorGap(b, qp, qc)
		np := j.parentPoint.Interpolation(b)
		nc := j.childPoint.Interpolation(b)
		kp := b.Scale(-2, b.MatMul(b.Transpose(d), np))
		kc := b.Scale(2, b.MatMul(b.Transpose(d), nc))
		return kp, kc

	case GroundSpherical:
		return nil, j.groundSphericalBlock(b, m)

	case GroundUniversal, GroundHinge:
		kc := j.groundSphericalBlock(b, m)
		for i := range j.theta {
			e := j.groundAxes[i].Unit()
			nc := nat.AxisVector(j.childAxes[i]).RotInterpolation(b)
			kc = b.SetBlock(kc, 3+i, 0, b.MatMul(b.Transpose(linalg.Vec3(b, e[0], e[1], e[2])), nc))
		}
		return nil, kc

	case GroundWeld:
		return nil, b.Scale(-1, b.Eye(12))

	case GroundFree:
		return nil, nil
	}
	panic("joint: unreachable kind " + j.kind.String())
}

// ConstraintJacobianDerivative is the time derivative of the Jacobian
// blocks, evaluated by substituting velocities into the same linear
// forms. Blocks that are constant in Q differentiate to zero.
func (j *Joint) ConstraintJacobianDerivative(b linalg.Backend, qpdot, qcdot linalg.Matrix) (parent, child linalg.Matrix) {
	m := j.Arity()

	switch j.kind {
	case Spherical:
		return b.Zeros(m, 12), b.Zeros(m, 12)

	case Universal, Hinge:
		kp := b.Zeros(m, 12)
		kc := b.Zeros(m, 12)
		for i := range j.theta {
			np := nat.AxisVector(j.parentAxes[i]).RotInterpolation(b)
			nc := nat.AxisVector(j.childAxes[i]).RotInterpolation(b)
			kp = b.SetBlock(kp, 3+i, 0, b.MatMul(b.Transpose(b.MatMul(nc, qcdot)), np))
			kc = b.SetBlock(kc, 3+i, 0, b.MatMul(b.Transpose(b.MatMul(np, qpdot)), nc))
		}
		return kp, kc

	case ConstantLength:
		np := j.parentPoint.Interpolation(b)
		nc := j.childPoint.Interpolation(b)
		ddot := b.Sub(b.MatMul(nc, qcdot), b.MatMul(np, qpdot))
		kp := b.Scale(-2, b.MatMul(b.Transpose(ddot), np))
		kc := b.Scale(2, b.MatMul(b.Transpose(ddot), nc))
		return kp, kc

	case GroundSpherical, GroundUniversal, GroundHinge, GroundWeld:
		return nil, b.Zeros(m, 12)

	case GroundFree:
		return nil, nil
	}
	panic("joint: unreachable kind " + j.kind.String())
}

func (j *Joint) anchor(b linalg.Backend) linalg.Matrix {
	return linalg.Vec3(b, j.groundPoint[0], j.groundPoint[1], j.groundPoint[2])
}

// anchorGap is the vector from the parent anchor to the child anchor.
func (j *Joint) anchorGap(b linalg.Backend, qp, qc linalg.Matrix) linalg.Matrix {
	pp := b.MatMul(j.parentPoint.Interpolation(b), qp)
	pc := b.MatMul(j.childPoint.Interpolation(b), qc)
	return b.Sub(pc, pp)
}

// sphericalBlocks are the constant point-coincidence selectors shared
// by the spherical family: identity on the parent's rd, negative
// identity on the child's rp.
func (j *Joint) sphericalBlocks(b linalg.Backend, m int) (linalg.Matrix, linalg.Matrix) {
	kp := b.SetBlock(b.Zeros(m, 12), 0, 6, b.Eye(3))
	kc := b.SetBlock(b.Zeros(m, 12), 0, 3, b.Scale(-1, b.Eye(3)))
	return kp, kc
}

func (j *Joint) groundSphericalBlock(b linalg.Backend, m int) linalg.Matrix {
	return b.SetBlock(b.Zeros(m, 12), 0, 3, b.Scale(-1, b.Eye(3)))
}
