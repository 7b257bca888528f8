package segment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/motionlab/natmech/internal/linalg"
	"github.com/motionlab/natmech/internal/nat"
)

// Segment is one rigid body described in natural coordinates. Its
// shape is fixed by a length and the three inter-axis angles alpha
// (v,w), beta (u,w) and gamma (u,v); together they define the Gram
// matrix the rigid-body constraint preserves. Shape parameters are
// immutable after construction.
type Segment struct {
	name   string
	length float64
	alpha  float64
	beta   float64
	gamma  float64
	index  int

	// transformation matrix from the natural basis [u v w] to the
	// segment's local cartesian frame, and its inverse
	b    *mat.Dense
	binv *mat.Dense

	hasInertia bool
	mass       float64
	com        [3]float64 // local cartesian, relative to rp
	comNatural [3]float64
	massMatrix *mat.Dense
}

// New builds a segment from its shape parameters. It fails with
// ErrDegenerateShape when the parameters do not describe a proper
// three-dimensional frame.
func New(name string, length, alpha, beta, gamma float64) (*Segment, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: length %g must be positive", ErrDegenerateShape, length)
	}
	ca, cb, cg := math.Cos(alpha), math.Cos(beta), math.Cos(gamma)
	sg := math.Sin(gamma)
	if math.Abs(sg) < 1e-12 {
		return nil, fmt.Errorf("%w: gamma %g makes u and v collinear", ErrDegenerateShape, gamma)
	}
	wy := (ca - cb*cg) / sg
	wz2 := 1 - cb*cb - wy*wy
	if wz2 <= 0 {
		return nil, fmt.Errorf("%w: angles alpha=%g beta=%g gamma=%g", ErrDegenerateShape, alpha, beta, gamma)
	}

	// Buv transformation: u along x, v in the x-y plane.
	b := mat.NewDense(3, 3, []float64{
		1, length * cg, cb,
		0, length * sg, wy,
		0, 0, math.Sqrt(wz2),
	})
	var binv mat.Dense
	if err := binv.Inverse(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateShape, err)
	}

	return &Segment{
		name:   name,
		length: length,
		alpha:  alpha,
		beta:   beta,
		gamma:  gamma,
		index:  -1,
		b:      b,
		binv:   &binv,
	}, nil
}

// SetInertia attaches mass, center of mass (local cartesian frame,
// relative to the proximal point) and the 3x3 inertia tensor about
// the center of mass. It derives the constant 12x12 generalized mass
// matrix of the segment.
func (s *Segment) SetInertia(mass float64, com [3]float64, inertia [3][3]float64) error {
	if mass <= 0 {
		return fmt.Errorf("%w: mass %g must be positive", ErrBadInertia, mass)
	}
	s.mass = mass
	s.com = com

	// center of mass in the natural basis
	c := mat.NewVecDense(3, []float64{com[0], com[1], com[2]})
	var n mat.VecDense
	n.MulVec(s.binv, c)
	s.comNatural = [3]float64{n.AtVec(0), n.AtVec(1), n.AtVec(2)}

	// pseudo inertia about rp in the local cartesian frame:
	// J = tr(Io)/2 * I - Io with Io the inertia about rp
	io := mat.NewDense(3, 3, nil)
	cc := com[0]*com[0] + com[1]*com[1] + com[2]*com[2]
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := inertia[i][j] - mass*com[i]*com[j]
			if i == j {
				v += mass * cc
			}
			io.Set(i, j, v)
		}
	}
	tr := io.At(0, 0) + io.At(1, 1) + io.At(2, 2)
	j := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			v := -io.At(i, k)
			if i == k {
				v += tr / 2
			}
			j.Set(i, k, v)
		}
	}

	// same tensor in the natural basis
	var jn, tmp mat.Dense
	tmp.Mul(s.binv, j)
	jn.Mul(&tmp, s.binv.T())

	s.massMatrix = naturalMassMatrix(mass, s.comNatural, &jn)
	s.hasInertia = true
	return nil
}

// naturalMassMatrix expands the 4x4 moment matrix of the interpolation
// weights (p1, 1+p2, -p2, p3) into the 12x12 kron-with-identity form.
func naturalMassMatrix(m float64, n [3]float64, j *mat.Dense) *mat.Dense {
	var c [4][4]float64
	c[0][0] = j.At(0, 0)
	c[0][1] = m*n[0] + j.At(0, 1)
	c[0][2] = -j.At(0, 1)
	c[0][3] = j.At(0, 2)
	c[1][1] = m + 2*m*n[1] + j.At(1, 1)
	c[1][2] = -(m*n[1] + j.At(1, 1))
	c[1][3] = m*n[2] + j.At(1, 2)
	c[2][2] = j.At(1, 1)
	c[2][3] = -j.At(1, 2)
	c[3][3] = j.At(2, 2)
	for i := 0; i < 4; i++ {
		for k := 0; k < i; k++ {
			c[i][k] = c[k][i]
		}
	}

	g := mat.NewDense(12, 12, nil)
	for i := 0; i < 4; i++ {
		for k := 0; k < 4; k++ {
			for d := 0; d < 3; d++ {
				g.Set(3*i+d, 3*k+d, c[i][k])
			}
		}
	}
	return g
}

func (s *Segment) Name() string     { return s.name }
func (s *Segment) Length() float64  { return s.length }
func (s *Segment) Mass() float64    { return s.mass }
func (s *Segment) HasInertia() bool { return s.hasInertia }

// Index is the segment's position in the model's ordered collection;
// it fixes the 12-row offset of the segment in all stacked system
// quantities. -1 until the segment is added to a model.
func (s *Segment) Index() int     { return s.index }
func (s *Segment) SetIndex(i int) { s.index = i }

// ToNatural converts a point from the segment's local cartesian frame
// to the natural basis.
func (s *Segment) ToNatural(p [3]float64) nat.Vector {
	v := mat.NewVecDense(3, []float64{p[0], p[1], p[2]})
	var n mat.VecDense
	n.MulVec(s.binv, v)
	return nat.Vector{n.AtVec(0), n.AtVec(1), n.AtVec(2)}
}

// CenterOfMassNatural is the center of mass in the natural basis.
func (s *Segment) CenterOfMassNatural() (nat.Vector, error) {
	if !s.hasInertia {
		return nat.Vector{}, ErrNoInertia
	}
	return nat.Vector(s.comNatural), nil
}

// RotationToGlobal builds the 3x3 rotation taking local cartesian
// directions to the global frame at configuration Q: [u v w] B^-1.
func (s *Segment) RotationToGlobal(b linalg.Backend, qi linalg.Matrix) linalg.Matrix {
	q := nat.Coords(b, qi)
	uvw := b.HCat(q.U(), q.V(), q.W())
	return b.MatMul(uvw, b.Const(3, 3, linalg.Floats(s.binv)))
}

// MassMatrix is the constant 12x12 generalized mass matrix, nil when
// inertial parameters were never supplied.
func (s *Segment) MassMatrix() *mat.Dense { return s.massMatrix }

// GravityForce is the constant generalized force of the segment's
// weight for gravity vector g, nil without inertial parameters.
func (s *Segment) GravityForce(g [3]float64) *mat.Dense {
	if !s.hasInertia {
		return nil
	}
	n := s.comNatural
	out := mat.NewDense(12, 1, nil)
	for d := 0; d < 3; d++ {
		out.Set(d, 0, s.mass*n[0]*g[d])
		out.Set(3+d, 0, s.mass*(1+n[1])*g[d])
		out.Set(6+d, 0, s.mass*(-n[1])*g[d])
		out.Set(9+d, 0, s.mass*n[2]*g[d])
	}
	return out
}

// PotentialEnergy is m * g . r_com, a linear function of Q.
func (s *Segment) PotentialEnergy(b linalg.Backend, qi linalg.Matrix, g [3]float64) (linalg.Matrix, error) {
	if !s.hasInertia {
		return nil, ErrNoInertia
	}
	q := nat.Coords(b, qi)
	rcom := q.Point(nat.Vector(s.comNatural))
	gv := b.Const(3, 1, []float64{g[0], g[1], g[2]})
	return b.Scale(s.mass, b.Dot(gv, rcom)), nil
}
