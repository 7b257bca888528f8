package nat

import (
	"fmt"

	"github.com/motionlab/natmech/internal/linalg"
)

// Axis names one of the three natural directions of a segment:
// U (proximal transverse), V (the rp->rd axis) and W (distal
// transverse).
type Axis int

const (
	AxisU Axis = iota
	AxisV
	AxisW
)

func (a Axis) String() string {
	switch a {
	case AxisU:
		return "u"
	case AxisV:
		return "v"
	case AxisW:
		return "w"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// CartesianAxis names a fixed axis of the global frame, used by
// ground-anchored joints.
type CartesianAxis int

const (
	CartesianX CartesianAxis = iota
	CartesianY
	CartesianZ
)

func (a CartesianAxis) String() string {
	switch a {
	case CartesianX:
		return "x"
	case CartesianY:
		return "y"
	case CartesianZ:
		return "z"
	}
	return fmt.Sprintf("cartesian(%d)", int(a))
}

// Unit returns the global-frame unit vector of the axis.
func (a CartesianAxis) Unit() [3]float64 {
	switch a {
	case CartesianX:
		return [3]float64{1, 0, 0}
	case CartesianY:
		return [3]float64{0, 1, 0}
	default:
		return [3]float64{0, 0, 1}
	}
}

// Vector is a point or direction expressed in a segment's natural
// basis (components along u, v and w).
type Vector [3]float64

// Proximal and Distal are the natural positions of the two end points.
var (
	Proximal = Vector{0, 0, 0}
	Distal   = Vector{0, -1, 0}
)

// AxisVector returns the natural direction vector of the given axis.
func AxisVector(a Axis) Vector {
	switch a {
	case AxisU:
		return Vector{1, 0, 0}
	case AxisV:
		return Vector{0, 1, 0}
	default:
		return Vector{0, 0, 1}
	}
}

// Interpolation builds the 3x12 matrix N(p) mapping a segment's
// natural coordinates [u, rp, rd, w] to the global position of the
// point p fixed in the segment:
//
//	N(p) Q = p1*u + rp + p2*(rp - rd) + p3*w
func (p Vector) Interpolation(b linalg.Backend) linalg.Matrix {
	n := b.Zeros(3, 12)
	n = b.SetBlock(n, 0, 0, b.Scale(p[0], b.Eye(3)))
	n = b.SetBlock(n, 0, 3, b.Scale(1+p[1], b.Eye(3)))
	n = b.SetBlock(n, 0, 6, b.Scale(-p[1], b.Eye(3)))
	n = b.SetBlock(n, 0, 9, b.Scale(p[2], b.Eye(3)))
	return n
}

// RotInterpolation is the rotation part of the interpolation matrix:
// it maps Q to the global direction of p, dropping the rp offset.
func (p Vector) RotInterpolation(b linalg.Backend) linalg.Matrix {
	n := b.Zeros(3, 12)
	n = b.SetBlock(n, 0, 0, b.Scale(p[0], b.Eye(3)))
	n = b.SetBlock(n, 0, 3, b.Scale(p[1], b.Eye(3)))
	n = b.SetBlock(n, 0, 6, b.Scale(-p[1], b.Eye(3)))
	n = b.SetBlock(n, 0, 9, b.Scale(p[2], b.Eye(3)))
	return n
}
