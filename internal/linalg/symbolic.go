package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Symbolic is the deferred backend: every operation records a node of
// an expression graph instead of computing. The graph is evaluated
// against variable bindings with Eval, which delegates the actual
// arithmetic to the Dense backend. Conversion is one-directional:
// symbolic expressions evaluate to dense matrices, never the reverse.
type Symbolic struct{}

func NewSymbolic() *Symbolic { return &Symbolic{} }

func (*Symbolic) Name() string { return "symbolic" }

// Env binds variable names to concrete values for evaluation.
type Env map[string]*mat.Dense

type opKind int

const (
	opVar opKind = iota
	opConst
	opAdd
	opSub
	opScale
	opMatMul
	opTranspose
	opDot
	opCross
	opScalarMul
	opScalarDiv
	opVCat
	opHCat
	opSetBlock
	opSlice
	opSolve
)

type node struct {
	rows, cols int
	op         opKind
	name       string // opVar
	factor     float64
	value      *mat.Dense // opConst
	args       []Matrix
	at         [4]int // opSetBlock: r0, c0; opSlice: r0, r1, c0, c1
}

func (n *node) Dims() (int, int) { return n.rows, n.cols }

// Var declares a named r x c variable to be bound at evaluation time.
func (*Symbolic) Var(name string, r, c int) Matrix {
	return &node{rows: r, cols: c, op: opVar, name: name}
}

func (*Symbolic) Zeros(r, c int) Matrix {
	return &node{rows: r, cols: c, op: opConst, value: mat.NewDense(r, c, nil)}
}

func (s *Symbolic) Eye(n int) Matrix {
	d := NewDense().Eye(n).(*mat.Dense)
	return &node{rows: n, cols: n, op: opConst, value: d}
}

func (*Symbolic) Const(r, c int, data []float64) Matrix {
	if len(data) == 0 {
		return &node{rows: r, cols: c, op: opConst, value: mat.NewDense(r, c, nil)}
	}
	cp := make([]float64, len(data))
	copy(cp, data)
	return &node{rows: r, cols: c, op: opConst, value: mat.NewDense(r, c, cp)}
}

func (*Symbolic) Add(a, b Matrix) Matrix {
	r, c := checkSame(a, b)
	return &node{rows: r, cols: c, op: opAdd, args: []Matrix{a, b}}
}

func (*Symbolic) Sub(a, b Matrix) Matrix {
	r, c := checkSame(a, b)
	return &node{rows: r, cols: c, op: opSub, args: []Matrix{a, b}}
}

func (*Symbolic) Scale(s float64, a Matrix) Matrix {
	r, c := a.Dims()
	return &node{rows: r, cols: c, op: opScale, factor: s, args: []Matrix{a}}
}

func (*Symbolic) MatMul(a, b Matrix) Matrix {
	r, _, c := checkMul(a, b)
	return &node{rows: r, cols: c, op: opMatMul, args: []Matrix{a, b}}
}

func (*Symbolic) Transpose(a Matrix) Matrix {
	r, c := a.Dims()
	return &node{rows: c, cols: r, op: opTranspose, args: []Matrix{a}}
}

func (*Symbolic) Dot(a, b Matrix) Matrix {
	checkSame(a, b)
	return &node{rows: 1, cols: 1, op: opDot, args: []Matrix{a, b}}
}

func (*Symbolic) Cross(a, b Matrix) Matrix {
	checkVec3(a)
	checkVec3(b)
	return &node{rows: 3, cols: 1, op: opCross, args: []Matrix{a, b}}
}

func (*Symbolic) ScalarMul(s, a Matrix) Matrix {
	checkScalar(s)
	r, c := a.Dims()
	return &node{rows: r, cols: c, op: opScalarMul, args: []Matrix{s, a}}
}

func (*Symbolic) ScalarDiv(a, s Matrix) Matrix {
	checkScalar(s)
	r, c := a.Dims()
	return &node{rows: r, cols: c, op: opScalarDiv, args: []Matrix{a, s}}
}

func (*Symbolic) VCat(parts ...Matrix) Matrix {
	rows, cols := 0, 0
	for _, p := range parts {
		r, c := p.Dims()
		rows += r
		cols = c
	}
	return &node{rows: rows, cols: cols, op: opVCat, args: parts}
}

func (*Symbolic) HCat(parts ...Matrix) Matrix {
	rows, cols := 0, 0
	for _, p := range parts {
		r, c := p.Dims()
		cols += c
		rows = r
	}
	return &node{rows: rows, cols: cols, op: opHCat, args: parts}
}

func (*Symbolic) SetBlock(dst Matrix, r0, c0 int, src Matrix) Matrix {
	r, c := dst.Dims()
	return &node{rows: r, cols: c, op: opSetBlock, args: []Matrix{dst, src}, at: [4]int{r0, c0}}
}

func (*Symbolic) Slice(a Matrix, r0, r1, c0, c1 int) Matrix {
	return &node{rows: r1 - r0, cols: c1 - c0, op: opSlice, args: []Matrix{a}, at: [4]int{r0, r1, c0, c1}}
}

func (*Symbolic) Solve(a, b Matrix) (Matrix, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != ac || br != ar {
		return nil, fmt.Errorf("linalg: solve dimension mismatch: %dx%d vs %dx%d", ar, ac, br, bc)
	}
	return &node{rows: ac, cols: bc, op: opSolve, args: []Matrix{a, b}}, nil
}

// Eval computes the concrete value of a symbolic expression under the
// given variable bindings.
func Eval(m Matrix, env Env) (*mat.Dense, error) {
	switch v := m.(type) {
	case *mat.Dense:
		return v, nil
	case *node:
		return v.eval(env)
	default:
		return nil, fmt.Errorf("linalg: cannot evaluate %T", m)
	}
}

func (n *node) eval(env Env) (*mat.Dense, error) {
	d := NewDense()

	evalArgs := func() ([]Matrix, error) {
		out := make([]Matrix, len(n.args))
		for i, a := range n.args {
			v, err := Eval(a, env)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	switch n.op {
	case opVar:
		v, ok := env[n.name]
		if !ok {
			return nil, fmt.Errorf("linalg: unbound variable %q", n.name)
		}
		if r, c := v.Dims(); r != n.rows || c != n.cols {
			return nil, fmt.Errorf("linalg: variable %q bound to %dx%d, declared %dx%d", n.name, r, c, n.rows, n.cols)
		}
		return v, nil
	case opConst:
		return n.value, nil
	}

	args, err := evalArgs()
	if err != nil {
		return nil, err
	}

	var out Matrix
	switch n.op {
	case opAdd:
		out = d.Add(args[0], args[1])
	case opSub:
		out = d.Sub(args[0], args[1])
	case opScale:
		out = d.Scale(n.factor, args[0])
	case opMatMul:
		out = d.MatMul(args[0], args[1])
	case opTranspose:
		out = d.Transpose(args[0])
	case opDot:
		out = d.Dot(args[0], args[1])
	case opCross:
		out = d.Cross(args[0], args[1])
	case opScalarMul:
		out = d.ScalarMul(args[0], args[1])
	case opScalarDiv:
		out = d.ScalarDiv(args[0], args[1])
	case opVCat:
		out = d.VCat(args...)
	case opHCat:
		out = d.HCat(args...)
	case opSetBlock:
		dst := mat.DenseCopyOf(args[0].(*mat.Dense))
		out = d.SetBlock(dst, n.at[0], n.at[1], args[1])
	case opSlice:
		out = d.Slice(args[0], n.at[0], n.at[1], n.at[2], n.at[3])
	case opSolve:
		out, err = d.Solve(args[0], args[1])
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("linalg: unknown op %d", n.op)
	}
	return out.(*mat.Dense), nil
}
