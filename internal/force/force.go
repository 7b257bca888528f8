// Package force maps externally applied wrenches into the
// generalized-force space of the natural coordinates.
package force

import (
	"errors"
	"fmt"

	"github.com/motionlab/natmech/internal/linalg"
	"github.com/motionlab/natmech/internal/nat"
	"github.com/motionlab/natmech/internal/segment"
)

// ErrSegmentIndex indicates a wrench addressed to a segment index
// outside the set the force set was sized for.
var ErrSegmentIndex = errors.New("force: segment index out of range")

// Convention names the reference frame and application point of a
// wrench.
type Convention int

const (
	// GlobalAtLocalPoint: force and moment in the global frame,
	// applied at a point given in the segment's local cartesian frame.
	GlobalAtLocalPoint Convention = iota
	// GlobalAtProximal: force and moment in the global frame, applied
	// at the segment's proximal end point.
	GlobalAtProximal
	// LocalFrame: force, moment and application point all expressed
	// in the segment's local cartesian frame.
	LocalFrame
)

// Wrench is one applied force/moment pair.
type Wrench struct {
	Force      [3]float64
	Moment     [3]float64
	Point      [3]float64 // local cartesian; ignored for GlobalAtProximal
	Convention Convention
}

// Set accumulates wrenches per segment for one evaluation. The zero
// set contributes nothing.
type Set struct {
	wrenches [][]Wrench
}

// NewSet sizes a set for a model with nbSegments segments.
func NewSet(nbSegments int) *Set {
	return &Set{wrenches: make([][]Wrench, nbSegments)}
}

// Add registers a wrench on the segment with the given index.
func (s *Set) Add(segmentIndex int, w Wrench) error {
	if segmentIndex < 0 || segmentIndex >= len(s.wrenches) {
		return fmt.Errorf("%w: %d (have %d segments)", ErrSegmentIndex, segmentIndex, len(s.wrenches))
	}
	s.wrenches[segmentIndex] = append(s.wrenches[segmentIndex], w)
	return nil
}

// ForSegment returns the wrenches registered on segment i.
func (s *Set) ForSegment(i int) []Wrench {
	if s == nil || i < 0 || i >= len(s.wrenches) {
		return nil
	}
	return s.wrenches[i]
}

// Generalized maps one wrench into the segment's 12 generalized
// forces at configuration qi: the interpolation matrix of the
// application point carries the force, the pseudo-interpolation
// matrix carries the moment.
func Generalized(b linalg.Backend, seg *segment.Segment, w Wrench, qi linalg.Matrix) linalg.Matrix {
	q := nat.Coords(b, qi)

	f := linalg.Vec3(b, w.Force[0], w.Force[1], w.Force[2])
	m := linalg.Vec3(b, w.Moment[0], w.Moment[1], w.Moment[2])

	var point nat.Vector
	switch w.Convention {
	case GlobalAtProximal:
		point = nat.Proximal
	case GlobalAtLocalPoint:
		point = seg.ToNatural(w.Point)
	case LocalFrame:
		point = seg.ToNatural(w.Point)
		rot := seg.RotationToGlobal(b, qi)
		f = b.MatMul(rot, f)
		m = b.MatMul(rot, m)
	}

	n := point.Interpolation(b)
	nw := q.PseudoInterpolation()
	return b.Add(b.MatMul(b.Transpose(n), f), b.MatMul(b.Transpose(nw), m))
}
