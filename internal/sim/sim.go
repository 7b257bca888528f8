// Package sim integrates a model's forward dynamics through time.
// The stepper is a fixed-step RK4 over the stacked state [Q, Qdot];
// it is a convenience for simulations and tests, not part of the
// mechanics core, which only exposes the acceleration function.
package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/motionlab/natmech/internal/force"
	"github.com/motionlab/natmech/internal/linalg"
	"github.com/motionlab/natmech/internal/model"
)

// ErrInvalidOptions indicates a non-positive step size or step count.
var ErrInvalidOptions = errors.New("sim: invalid integration options")

// Options configures an integration run.
type Options struct {
	Dt    float64
	Steps int
	// NormalizeUnitVectors rescales each segment's u and w to unit
	// length after every step, counteracting slow drift of the
	// direction vectors.
	NormalizeUnitVectors bool
	Stabilization        *model.Stabilization
	Forces               *force.Set
}

// Result holds the sampled trajectory.
type Result struct {
	Times  []float64
	States [][]float64 // [Q, Qdot] per sample
	// Drift is the max-norm of the holonomic constraint residual per
	// sample.
	Drift []float64
}

// State returns the coordinates and velocities of sample i.
func (r *Result) State(i int) (q, qdot []float64) {
	n := len(r.States[i]) / 2
	return r.States[i][:n], r.States[i][n:]
}

// Integrate runs fixed-step RK4 on the model's forward dynamics from
// the packed initial coordinates and velocities.
func Integrate(m *model.Model, q0, qdot0 []float64, opt Options) (*Result, error) {
	if opt.Dt <= 0 || opt.Steps <= 0 {
		return nil, fmt.Errorf("%w: dt=%g steps=%d", ErrInvalidOptions, opt.Dt, opt.Steps)
	}
	if _, ok := m.Backend().(*linalg.Dense); !ok {
		return nil, fmt.Errorf("sim: integration needs the dense backend, model uses %q", m.Backend().Name())
	}
	n := m.NbQ()
	if len(q0) != n || len(qdot0) != n {
		return nil, fmt.Errorf("sim: state length %d/%d, want %d", len(q0), len(qdot0), n)
	}

	b := linalg.NewDense()
	deriv := func(x []float64) ([]float64, error) {
		q := b.Const(n, 1, x[:n])
		qdot := b.Const(n, 1, x[n:])
		qddot, _, err := m.ForwardDynamics(q, qdot, opt.Forces, opt.Stabilization)
		if err != nil {
			return nil, err
		}
		out := make([]float64, 2*n)
		copy(out[:n], x[n:])
		copy(out[n:], linalg.Floats(qddot))
		return out, nil
	}

	x := make([]float64, 2*n)
	copy(x[:n], q0)
	copy(x[n:], qdot0)

	res := &Result{
		Times:  make([]float64, 0, opt.Steps+1),
		States: make([][]float64, 0, opt.Steps+1),
		Drift:  make([]float64, 0, opt.Steps+1),
	}
	record := func(t float64, x []float64) {
		cp := make([]float64, len(x))
		copy(cp, x)
		res.Times = append(res.Times, t)
		res.States = append(res.States, cp)
		res.Drift = append(res.Drift, maxResidual(m, b, cp[:n]))
	}
	record(0, x)

	t := 0.0
	for i := 0; i < opt.Steps; i++ {
		next, err := rk4Step(deriv, x, opt.Dt)
		if err != nil {
			return res, fmt.Errorf("sim: step %d (t=%.4f): %w", i, t, err)
		}
		x = next
		if opt.NormalizeUnitVectors {
			normalizeDirections(x[:n])
		}
		t += opt.Dt
		record(t, x)
	}
	return res, nil
}

func rk4Step(f func([]float64) ([]float64, error), x []float64, dt float64) ([]float64, error) {
	n := len(x)
	k1, err := f(x)
	if err != nil {
		return nil, err
	}
	k2, err := f(shifted(x, k1, dt/2))
	if err != nil {
		return nil, err
	}
	k3, err := f(shifted(x, k2, dt/2))
	if err != nil {
		return nil, err
	}
	k4, err := f(shifted(x, k3, dt))
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = x[i] + dt/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out, nil
}

func shifted(x, k []float64, h float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] + h*k[i]
	}
	return out
}

// normalizeDirections rescales the u and w triplets of each segment's
// 12-coordinate block to unit length.
func normalizeDirections(q []float64) {
	for off := 0; off+12 <= len(q); off += 12 {
		normalize3(q[off : off+3])
		normalize3(q[off+9 : off+12])
	}
}

func normalize3(v []float64) {
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if n == 0 {
		return
	}
	v[0] /= n
	v[1] /= n
	v[2] /= n
}

func maxResidual(m *model.Model, b *linalg.Dense, q []float64) float64 {
	phi := m.HolonomicConstraints(b.Const(m.NbQ(), 1, q))
	max := 0.0
	for _, v := range linalg.Floats(phi) {
		if a := math.Abs(v); a > max {
			max = a
		}
	}
	return max
}
