package nat

import (
	"fmt"

	"github.com/motionlab/natmech/internal/linalg"
)

// SegmentCoordinates is a shaped view over one segment's 12 natural
// coordinates [u, rp, rd, w]. The same view works for velocities and
// accelerations, which share the layout.
type SegmentCoordinates struct {
	b   linalg.Backend
	vec linalg.Matrix
}

// Coords wraps a 12x1 column vector. It panics on any other shape:
// passing a mis-sized coordinate vector is a contract violation.
func Coords(b linalg.Backend, vec linalg.Matrix) SegmentCoordinates {
	if r, c := vec.Dims(); r != 12 || c != 1 {
		panic(fmt.Sprintf("nat: segment coordinates must be 12x1, got %dx%d", r, c))
	}
	return SegmentCoordinates{b: b, vec: vec}
}

func (q SegmentCoordinates) Vector() linalg.Matrix { return q.vec }

// U is the proximal transverse direction vector.
func (q SegmentCoordinates) U() linalg.Matrix { return q.b.Slice(q.vec, 0, 3, 0, 1) }

// Rp is the proximal end point.
func (q SegmentCoordinates) Rp() linalg.Matrix { return q.b.Slice(q.vec, 3, 6, 0, 1) }

// Rd is the distal end point.
func (q SegmentCoordinates) Rd() linalg.Matrix { return q.b.Slice(q.vec, 6, 9, 0, 1) }

// W is the distal transverse direction vector.
func (q SegmentCoordinates) W() linalg.Matrix { return q.b.Slice(q.vec, 9, 12, 0, 1) }

// V is the derived rp - rd axis; it is never stored.
func (q SegmentCoordinates) V() linalg.Matrix { return q.b.Sub(q.Rp(), q.Rd()) }

// Axis returns the global direction of the given natural axis.
func (q SegmentCoordinates) Axis(a Axis) linalg.Matrix {
	switch a {
	case AxisU:
		return q.U()
	case AxisV:
		return q.V()
	default:
		return q.W()
	}
}

// Point interpolates the global position of a point fixed in the
// segment at natural position p.
func (q SegmentCoordinates) Point(p Vector) linalg.Matrix {
	return q.b.MatMul(p.Interpolation(q.b), q.vec)
}

// PseudoInterpolation builds the 3x12 matrix Nw(Q) mapping Qdot to
// the segment's angular velocity. With G = [u v w] and the linear
// forms p = (w . vdot, u . wdot, v . udot) one has
// det(G) inv(G) w = p, hence w = G p / det(G).
func (q SegmentCoordinates) PseudoInterpolation() linalg.Matrix {
	b := q.b
	u, v, w := q.U(), q.V(), q.W()

	p := b.Zeros(3, 12)
	p = b.SetBlock(p, 0, 3, b.Transpose(w))
	p = b.SetBlock(p, 0, 6, b.Scale(-1, b.Transpose(w)))
	p = b.SetBlock(p, 1, 9, b.Transpose(u))
	p = b.SetBlock(p, 2, 0, b.Transpose(v))

	g := b.HCat(u, v, w)
	det := b.Dot(u, b.Cross(v, w))
	return b.ScalarDiv(b.MatMul(g, p), det)
}

// FromComponents packs u, rp, rd, w into the 12-scalar layout.
func FromComponents(u, rp, rd, w [3]float64) []float64 {
	out := make([]float64, 0, 12)
	out = append(out, u[:]...)
	out = append(out, rp[:]...)
	out = append(out, rd[:]...)
	out = append(out, w[:]...)
	return out
}

// SegmentOf extracts segment i's 12-row slice from stacked system
// coordinates.
func SegmentOf(b linalg.Backend, q linalg.Matrix, i int) SegmentCoordinates {
	return Coords(b, b.Slice(q, 12*i, 12*(i+1), 0, 1))
}
