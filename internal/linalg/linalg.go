package linalg

// Matrix is an opaque dense real matrix owned by a Backend. Concrete
// values are either *mat.Dense (Dense backend) or expression nodes
// (Symbolic backend); callers only ever see the shape.
type Matrix interface {
	Dims() (r, c int)
}

// Backend is the arithmetic substrate the whole engine is written
// against. The Dense backend computes immediately on float64 arrays,
// the Symbolic backend records an expression graph evaluated later.
//
// All operations panic on shape mismatch: a wrong-size operand is a
// programming error, not a runtime condition.
type Backend interface {
	Name() string

	Zeros(r, c int) Matrix
	Eye(n int) Matrix
	// Const builds a matrix from row-major data. len(data) must be r*c.
	Const(r, c int, data []float64) Matrix

	Add(a, b Matrix) Matrix
	Sub(a, b Matrix) Matrix
	Scale(s float64, a Matrix) Matrix
	MatMul(a, b Matrix) Matrix
	Transpose(a Matrix) Matrix
	// Dot is the inner product of two column vectors, returned as 1x1.
	Dot(a, b Matrix) Matrix
	// Cross is the cross product of two 3x1 column vectors.
	Cross(a, b Matrix) Matrix
	// ScalarMul multiplies a by the 1x1 matrix s.
	ScalarMul(s, a Matrix) Matrix
	// ScalarDiv divides a by the 1x1 matrix s.
	ScalarDiv(a, s Matrix) Matrix

	VCat(parts ...Matrix) Matrix
	HCat(parts ...Matrix) Matrix
	// SetBlock writes src into dst at (r0, c0) and returns the result.
	// The returned matrix must be used in place of dst; the Dense
	// backend mutates dst, the Symbolic backend builds a new node.
	SetBlock(dst Matrix, r0, c0 int, src Matrix) Matrix
	// Slice extracts the half-open block [r0:r1, c0:c1].
	Slice(a Matrix, r0, r1, c0, c1 int) Matrix

	// Solve computes x such that a*x = b via a dense LU solve.
	// An ill-conditioned or singular system surfaces as an error.
	Solve(a, b Matrix) (Matrix, error)
}

// Vec3 builds a 3x1 column vector.
func Vec3(b Backend, x, y, z float64) Matrix {
	return b.Const(3, 1, []float64{x, y, z})
}

func checkSame(a, b Matrix) (int, int) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		panic("linalg: dimension mismatch")
	}
	return ar, ac
}

func checkMul(a, b Matrix) (int, int, int) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ac != br {
		panic("linalg: dimension mismatch in product")
	}
	return ar, ac, bc
}

func checkVec3(a Matrix) {
	if r, c := a.Dims(); r != 3 || c != 1 {
		panic("linalg: expected 3x1 vector")
	}
}

func checkScalar(s Matrix) {
	if r, c := s.Dims(); r != 1 || c != 1 {
		panic("linalg: expected 1x1 scalar")
	}
}
