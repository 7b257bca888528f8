package model

import (
	"github.com/motionlab/natmech/internal/joint"
	"github.com/motionlab/natmech/internal/linalg"
	"github.com/motionlab/natmech/internal/nat"
)

// RigidBodyConstraints stacks every segment's six rigid-body rows in
// segment-index order. There is no cross-segment coupling.
func (m *Model) RigidBodyConstraints(q linalg.Matrix) linalg.Matrix {
	m.checkQ(q)
	b := m.backend
	parts := make([]linalg.Matrix, len(m.segments))
	for i, s := range m.segments {
		parts[i] = s.RigidBodyConstraint(b, nat.SegmentOf(b, q, i).Vector())
	}
	return b.VCat(parts...)
}

// RigidBodyConstraintsJacobian is block-diagonal: segment i occupies
// rows [6i, 6i+6) and columns [12i, 12i+12); everything else is
// exactly zero.
func (m *Model) RigidBodyConstraintsJacobian(q linalg.Matrix) linalg.Matrix {
	m.checkQ(q)
	b := m.backend
	n := len(m.segments)
	k := b.Zeros(6*n, 12*n)
	for i, s := range m.segments {
		ki := s.RigidBodyConstraintJacobian(b, nat.SegmentOf(b, q, i).Vector())
		k = b.SetBlock(k, 6*i, 12*i, ki)
	}
	return k
}

// RigidBodyConstraintsJacobianDerivative stacks the per-segment
// Jacobian time derivatives with the same block layout.
func (m *Model) RigidBodyConstraintsJacobianDerivative(qdot linalg.Matrix) linalg.Matrix {
	m.checkQ(qdot)
	b := m.backend
	n := len(m.segments)
	k := b.Zeros(6*n, 12*n)
	for i, s := range m.segments {
		ki := s.RigidBodyConstraintJacobianDerivative(b, nat.SegmentOf(b, qdot, i).Vector())
		k = b.SetBlock(k, 6*i, 12*i, ki)
	}
	return k
}

// JointConstraints stacks each joint's constraint rows in joint
// insertion order, each evaluated on its parent's and child's
// coordinate slices. Returns nil when the model has no constraint
// rows.
func (m *Model) JointConstraints(q linalg.Matrix) linalg.Matrix {
	m.checkQ(q)
	b := m.backend
	var parts []linalg.Matrix
	for _, j := range m.joints {
		if j.Arity() == 0 {
			continue
		}
		qp, qc := m.jointSlices(q, j)
		parts = append(parts, j.Constraint(b, qp, qc))
	}
	if len(parts) == 0 {
		return nil
	}
	return b.VCat(parts...)
}

// JointConstraintsJacobian scatters each joint's parent and child
// blocks into the columns owned by the respective segment index; all
// other columns stay zero. Returns nil without joint rows.
func (m *Model) JointConstraintsJacobian(q linalg.Matrix) linalg.Matrix {
	m.checkQ(q)
	return m.jointJacobian(q, false)
}

// JointConstraintsJacobianDerivative is the time-derivative analogue,
// evaluated at Qdot.
func (m *Model) JointConstraintsJacobianDerivative(qdot linalg.Matrix) linalg.Matrix {
	m.checkQ(qdot)
	return m.jointJacobian(qdot, true)
}

func (m *Model) jointJacobian(v linalg.Matrix, derivative bool) linalg.Matrix {
	b := m.backend
	nk := m.NbJointConstraints()
	if nk == 0 {
		return nil
	}
	k := b.Zeros(nk, m.NbQ())
	row := 0
	for _, j := range m.joints {
		if j.Arity() == 0 {
			continue
		}
		qp, qc := m.jointSlices(v, j)
		var kp, kc linalg.Matrix
		if derivative {
			kp, kc = j.ConstraintJacobianDerivative(b, qp, qc)
		} else {
			kp, kc = j.ConstraintJacobian(b, qp, qc)
		}
		if kp != nil {
			k = b.SetBlock(k, row, 12*j.Parent().Index(), kp)
		}
		k = b.SetBlock(k, row, 12*j.Child().Index(), kc)
		row += j.Arity()
	}
	return k
}

// HolonomicConstraints is the stacked rigid-body plus joint
// constraint vector Phi.
func (m *Model) HolonomicConstraints(q linalg.Matrix) linalg.Matrix {
	phiR := m.RigidBodyConstraints(q)
	phiK := m.JointConstraints(q)
	if phiK == nil {
		return phiR
	}
	return m.backend.VCat(phiR, phiK)
}

// HolonomicConstraintsJacobian is the stacked constraint Jacobian K.
func (m *Model) HolonomicConstraintsJacobian(q linalg.Matrix) linalg.Matrix {
	kr := m.RigidBodyConstraintsJacobian(q)
	kk := m.JointConstraintsJacobian(q)
	if kk == nil {
		return kr
	}
	return m.backend.VCat(kr, kk)
}

// HolonomicConstraintsJacobianDerivative is the stacked Kdot.
func (m *Model) HolonomicConstraintsJacobianDerivative(qdot linalg.Matrix) linalg.Matrix {
	kr := m.RigidBodyConstraintsJacobianDerivative(qdot)
	kk := m.JointConstraintsJacobianDerivative(qdot)
	if kk == nil {
		return kr
	}
	return m.backend.VCat(kr, kk)
}

// jointSlices extracts the parent and child 12-row coordinate slices
// by the segments' stored indices, not the joint declaration order.
// Ground joints have no parent slice.
func (m *Model) jointSlices(q linalg.Matrix, j *joint.Joint) (linalg.Matrix, linalg.Matrix) {
	b := m.backend
	var qp linalg.Matrix
	if !j.Kind().Ground() {
		qp = nat.SegmentOf(b, q, j.Parent().Index()).Vector()
	}
	qc := nat.SegmentOf(b, q, j.Child().Index()).Vector()
	return qp, qc
}
