package linalg

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular reports a linear solve that failed because the system
// matrix is singular or numerically close to it.
var ErrSingular = errors.New("linalg: singular or ill-conditioned system")

// Dense is the concrete floating-point backend on gonum matrices.
type Dense struct{}

func NewDense() *Dense { return &Dense{} }

func (*Dense) Name() string { return "dense" }

func (*Dense) Zeros(r, c int) Matrix { return mat.NewDense(r, c, nil) }

func (*Dense) Eye(n int) Matrix {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func (*Dense) Const(r, c int, data []float64) Matrix {
	if len(data) == 0 {
		return mat.NewDense(r, c, nil)
	}
	cp := make([]float64, len(data))
	copy(cp, data)
	return mat.NewDense(r, c, cp)
}

func dense(a Matrix) *mat.Dense {
	d, ok := a.(*mat.Dense)
	if !ok {
		panic(fmt.Sprintf("linalg: foreign matrix %T passed to dense backend", a))
	}
	return d
}

func (*Dense) Add(a, b Matrix) Matrix {
	r, c := checkSame(a, b)
	out := mat.NewDense(r, c, nil)
	out.Add(dense(a), dense(b))
	return out
}

func (*Dense) Sub(a, b Matrix) Matrix {
	r, c := checkSame(a, b)
	out := mat.NewDense(r, c, nil)
	out.Sub(dense(a), dense(b))
	return out
}

func (*Dense) Scale(s float64, a Matrix) Matrix {
	r, c := a.Dims()
	out := mat.NewDense(r, c, nil)
	out.Scale(s, dense(a))
	return out
}

func (*Dense) MatMul(a, b Matrix) Matrix {
	r, _, c := checkMul(a, b)
	out := mat.NewDense(r, c, nil)
	out.Mul(dense(a), dense(b))
	return out
}

func (*Dense) Transpose(a Matrix) Matrix {
	r, c := a.Dims()
	out := mat.NewDense(c, r, nil)
	out.Copy(dense(a).T())
	return out
}

func (*Dense) Dot(a, b Matrix) Matrix {
	checkSame(a, b)
	da, db := dense(a), dense(b)
	r, _ := a.Dims()
	sum := 0.0
	for i := 0; i < r; i++ {
		sum += da.At(i, 0) * db.At(i, 0)
	}
	return mat.NewDense(1, 1, []float64{sum})
}

func (*Dense) Cross(a, b Matrix) Matrix {
	checkVec3(a)
	checkVec3(b)
	da, db := dense(a), dense(b)
	ax, ay, az := da.At(0, 0), da.At(1, 0), da.At(2, 0)
	bx, by, bz := db.At(0, 0), db.At(1, 0), db.At(2, 0)
	return mat.NewDense(3, 1, []float64{
		ay*bz - az*by,
		az*bx - ax*bz,
		ax*by - ay*bx,
	})
}

func (d *Dense) ScalarMul(s, a Matrix) Matrix {
	checkScalar(s)
	return d.Scale(dense(s).At(0, 0), a)
}

func (d *Dense) ScalarDiv(a, s Matrix) Matrix {
	checkScalar(s)
	return d.Scale(1/dense(s).At(0, 0), a)
}

func (*Dense) VCat(parts ...Matrix) Matrix {
	rows, cols := 0, 0
	for _, p := range parts {
		r, c := p.Dims()
		rows += r
		cols = c
	}
	out := mat.NewDense(rows, cols, nil)
	at := 0
	for _, p := range parts {
		r, _ := p.Dims()
		out.Slice(at, at+r, 0, cols).(*mat.Dense).Copy(dense(p))
		at += r
	}
	return out
}

func (*Dense) HCat(parts ...Matrix) Matrix {
	rows, cols := 0, 0
	for _, p := range parts {
		r, c := p.Dims()
		cols += c
		rows = r
	}
	out := mat.NewDense(rows, cols, nil)
	at := 0
	for _, p := range parts {
		_, c := p.Dims()
		out.Slice(0, rows, at, at+c).(*mat.Dense).Copy(dense(p))
		at += c
	}
	return out
}

func (*Dense) SetBlock(dst Matrix, r0, c0 int, src Matrix) Matrix {
	sr, sc := src.Dims()
	dense(dst).Slice(r0, r0+sr, c0, c0+sc).(*mat.Dense).Copy(dense(src))
	return dst
}

func (*Dense) Slice(a Matrix, r0, r1, c0, c1 int) Matrix {
	out := mat.NewDense(r1-r0, c1-c0, nil)
	out.Copy(dense(a).Slice(r0, r1, c0, c1))
	return out
}

func (*Dense) Solve(a, b Matrix) (Matrix, error) {
	ar, ac := a.Dims()
	if ar != ac {
		return nil, fmt.Errorf("linalg: solve needs a square system, got %dx%d", ar, ac)
	}
	br, bc := b.Dims()
	if br != ar {
		return nil, fmt.Errorf("linalg: solve dimension mismatch: %dx%d vs %dx%d", ar, ac, br, bc)
	}
	out := mat.NewDense(ar, bc, nil)
	if err := out.Solve(dense(a), dense(b)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return out, nil
}

// AsDense unwraps a Matrix produced by the Dense backend.
func AsDense(a Matrix) (*mat.Dense, bool) {
	d, ok := a.(*mat.Dense)
	return d, ok
}

// Floats returns the row-major data of a Dense-backend matrix.
// It panics on matrices from other backends.
func Floats(a Matrix) []float64 {
	d := dense(a)
	r, c := d.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, d.At(i, j))
		}
	}
	return out
}
