package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSymbolicMatchesDense(t *testing.T) {
	s := NewSymbolic()
	d := NewDense()

	x := s.Var("x", 2, 2)
	expr := s.Add(s.MatMul(x, s.Eye(2)), s.Scale(2, s.Const(2, 2, []float64{1, 0, 0, 1})))

	xv := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	got, err := Eval(expr, Env{"x": xv})
	require.NoError(t, err)

	want := d.Add(d.Const(2, 2, []float64{1, 2, 3, 4}), d.Scale(2, d.Eye(2)))
	assert.Equal(t, Floats(want), Floats(got))
}

func TestSymbolicUnboundVariable(t *testing.T) {
	s := NewSymbolic()

	expr := s.Scale(2, s.Var("q", 3, 1))
	_, err := Eval(expr, Env{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unbound")
}

func TestSymbolicVariableShapeMismatch(t *testing.T) {
	s := NewSymbolic()

	expr := s.Var("q", 3, 1)
	_, err := Eval(expr, Env{"q": mat.NewDense(2, 1, nil)})
	require.Error(t, err)
}

func TestSymbolicDotCross(t *testing.T) {
	s := NewSymbolic()

	a := s.Var("a", 3, 1)
	b := s.Var("b", 3, 1)
	env := Env{
		"a": mat.NewDense(3, 1, []float64{1, 2, 3}),
		"b": mat.NewDense(3, 1, []float64{4, 5, 6}),
	}

	dot, err := Eval(s.Dot(a, b), env)
	require.NoError(t, err)
	assert.Equal(t, []float64{32}, Floats(dot))

	cross, err := Eval(s.Cross(a, b), env)
	require.NoError(t, err)
	assert.Equal(t, []float64{-3, 6, -3}, Floats(cross))
}

func TestSymbolicSetBlockDoesNotMutate(t *testing.T) {
	s := NewSymbolic()

	base := s.Zeros(2, 2)
	blocked := s.SetBlock(base, 0, 0, s.Const(1, 1, []float64{5}))

	got, err := Eval(blocked, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 0, 0, 0}, Floats(got))

	// the shared base expression must stay all-zero
	orig, err := Eval(base, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, Floats(orig))
}

func TestSymbolicSolve(t *testing.T) {
	s := NewSymbolic()

	a := s.Const(2, 2, []float64{2, 0, 0, 4})
	b := s.Var("b", 2, 1)
	expr, err := s.Solve(a, b)
	require.NoError(t, err)

	got, err := Eval(expr, Env{"b": mat.NewDense(2, 1, []float64{2, 4})})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, Floats(got)[0], 1e-12)
	assert.InDelta(t, 1.0, Floats(got)[1], 1e-12)
}
