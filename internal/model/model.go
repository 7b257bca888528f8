package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/motionlab/natmech/internal/joint"
	"github.com/motionlab/natmech/internal/linalg"
	"github.com/motionlab/natmech/internal/segment"
)

// Model aggregates segments and joints into a whole mechanism. Both
// collections keep insertion order: the segment order fixes the
// 12-row coordinate layout, the joint order fixes the constraint row
// layout. Mutation (adding segments or joints) is not safe for
// concurrent use; evaluation is, since it touches no shared state.
type Model struct {
	backend linalg.Backend
	gravity [3]float64

	segments []*segment.Segment
	segIndex map[string]int
	joints   []*joint.Joint
	jntIndex map[string]int

	// recomputed on every segment mutation, nil while any segment
	// lacks inertial parameters
	massMatrix *mat.Dense
}

// Option configures a Model at construction.
type Option func(*Model)

// WithBackend selects the arithmetic substrate; the default is the
// dense float64 backend.
func WithBackend(b linalg.Backend) Option {
	return func(m *Model) { m.backend = b }
}

// WithGravity overrides the default gravity vector (0, 0, -9.81).
func WithGravity(g [3]float64) Option {
	return func(m *Model) { m.gravity = g }
}

func New(opts ...Option) *Model {
	m := &Model{
		backend:  linalg.NewDense(),
		gravity:  [3]float64{0, 0, -9.81},
		segIndex: make(map[string]int),
		jntIndex: make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) Backend() linalg.Backend { return m.backend }
func (m *Model) Gravity() [3]float64     { return m.gravity }

func (m *Model) NbSegments() int { return len(m.segments) }
func (m *Model) NbJoints() int   { return len(m.joints) }
func (m *Model) NbQ() int        { return 12 * len(m.segments) }

// NbJointConstraints is the total joint constraint row count.
func (m *Model) NbJointConstraints() int {
	n := 0
	for _, j := range m.joints {
		n += j.Arity()
	}
	return n
}

// NbHolonomicConstraints is the full constraint row count: 6 rigid
// body rows per segment plus all joint rows.
func (m *Model) NbHolonomicConstraints() int {
	return 6*len(m.segments) + m.NbJointConstraints()
}

// AddSegment appends a segment; insertion order assigns its index and
// therefore its offset in every stacked quantity. The generalized
// mass matrix is recomputed eagerly.
func (m *Model) AddSegment(s *segment.Segment) error {
	if _, ok := m.segIndex[s.Name()]; ok {
		return fmt.Errorf("%w: segment %q", ErrDuplicateName, s.Name())
	}
	s.SetIndex(len(m.segments))
	m.segments = append(m.segments, s)
	m.segIndex[s.Name()] = s.Index()
	m.updateMassMatrix()
	return nil
}

// AddJoint appends a joint. Its parent (unless ground-anchored) and
// child must already be segments of this model.
func (m *Model) AddJoint(j *joint.Joint) error {
	if _, ok := m.jntIndex[j.Name()]; ok {
		return fmt.Errorf("%w: joint %q", ErrDuplicateName, j.Name())
	}
	if !j.Kind().Ground() {
		if err := m.owns(j.Parent()); err != nil {
			return fmt.Errorf("parent of joint %q: %w", j.Name(), err)
		}
	}
	if err := m.owns(j.Child()); err != nil {
		return fmt.Errorf("child of joint %q: %w", j.Name(), err)
	}
	m.jntIndex[j.Name()] = len(m.joints)
	m.joints = append(m.joints, j)
	return nil
}

func (m *Model) owns(s *segment.Segment) error {
	if s == nil {
		return fmt.Errorf("%w: nil segment", ErrUnknownSegment)
	}
	i, ok := m.segIndex[s.Name()]
	if !ok || m.segments[i] != s {
		return fmt.Errorf("%w: %q", ErrUnknownSegment, s.Name())
	}
	return nil
}

// Segment looks a segment up by name.
func (m *Model) Segment(name string) (*segment.Segment, bool) {
	i, ok := m.segIndex[name]
	if !ok {
		return nil, false
	}
	return m.segments[i], true
}

// Joint looks a joint up by name.
func (m *Model) Joint(name string) (*joint.Joint, bool) {
	i, ok := m.jntIndex[name]
	if !ok {
		return nil, false
	}
	return m.joints[i], true
}

// Segments returns the segments in insertion (index) order.
func (m *Model) Segments() []*segment.Segment {
	return append([]*segment.Segment(nil), m.segments...)
}

// Joints returns the joints in insertion order.
func (m *Model) Joints() []*joint.Joint {
	return append([]*joint.Joint(nil), m.joints...)
}

func (m *Model) updateMassMatrix() {
	n := len(m.segments)
	g := mat.NewDense(12*n, 12*n, nil)
	for i, s := range m.segments {
		gi := s.MassMatrix()
		if gi == nil {
			m.massMatrix = nil
			return
		}
		g.Slice(12*i, 12*(i+1), 12*i, 12*(i+1)).(*mat.Dense).Copy(gi)
	}
	m.massMatrix = g
}

// RefreshMassMatrix recomputes the cached generalized mass matrix;
// call it after changing a segment's inertial parameters in place.
func (m *Model) RefreshMassMatrix() { m.updateMassMatrix() }

// MassMatrix is the block-diagonal 12n x 12n generalized mass matrix,
// nil while any segment lacks inertial parameters.
func (m *Model) MassMatrix() *mat.Dense { return m.massMatrix }

func (m *Model) checkQ(q linalg.Matrix) {
	if r, c := q.Dims(); r != m.NbQ() || c != 1 {
		panic(fmt.Sprintf("model: coordinates must be %dx1, got %dx%d", m.NbQ(), r, c))
	}
}
