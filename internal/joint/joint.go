package joint

import (
	"errors"
	"fmt"

	"github.com/motionlab/natmech/internal/nat"
	"github.com/motionlab/natmech/internal/segment"
)

var (
	// ErrBadParams indicates variant parameters of the wrong arity or
	// range at construction.
	ErrBadParams = errors.New("joint: invalid joint parameters")

	// ErrUnimplemented indicates a declared variant whose constraint
	// formulation is not implemented.
	ErrUnimplemented = errors.New("joint: unimplemented joint variant")
)

// Kind enumerates the closed set of joint variants. Dispatch is by
// switching on the kind; the set is fixed at design time.
type Kind int

const (
	Spherical Kind = iota
	Universal
	Hinge
	ConstantLength
	SphereOnPlane
	GroundSpherical
	GroundUniversal
	GroundHinge
	GroundWeld
	GroundFree
)

func (k Kind) String() string {
	switch k {
	case Spherical:
		return "spherical"
	case Universal:
		return "universal"
	case Hinge:
		return "hinge"
	case ConstantLength:
		return "constant_length"
	case SphereOnPlane:
		return "sphere_on_plane"
	case GroundSpherical:
		return "ground_spherical"
	case GroundUniversal:
		return "ground_universal"
	case GroundHinge:
		return "ground_hinge"
	case GroundWeld:
		return "ground_weld"
	case GroundFree:
		return "ground_free"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Ground reports whether the variant anchors its child to the global
// frame instead of a parent segment.
func (k Kind) Ground() bool {
	return k >= GroundSpherical
}

// Joint couples a child segment to a parent segment (or to the
// ground) with a fixed number of scalar constraint equations. A joint
// is immutable once built; evaluation is a pure function of the
// coordinate vectors.
type Joint struct {
	name   string
	kind   Kind
	parent *segment.Segment // nil for ground variants
	child  *segment.Segment

	parentAxes []nat.Axis
	childAxes  []nat.Axis
	groundAxes []nat.CartesianAxis
	theta      []float64

	length      float64
	parentPoint nat.Vector
	childPoint  nat.Vector

	groundPoint [3]float64
	weldTarget  []float64
}

func (j *Joint) Name() string             { return j.name }
func (j *Joint) Kind() Kind               { return j.kind }
func (j *Joint) Parent() *segment.Segment { return j.parent }
func (j *Joint) Child() *segment.Segment  { return j.child }

// Arity is the fixed number of scalar constraints the variant
// contributes to the system constraint vector.
func (j *Joint) Arity() int {
	switch j.kind {
	case Spherical, GroundSpherical:
		return 3
	case Universal, GroundUniversal:
		return 4
	case Hinge, GroundHinge:
		return 5
	case ConstantLength:
		return 1
	case GroundWeld:
		return 12
	case GroundFree:
		return 0
	}
	return 0
}

// NewSpherical couples the parent's distal point with the child's
// proximal point.
func NewSpherical(name string, parent, child *segment.Segment) (*Joint, error) {
	if parent == nil || child == nil {
		return nil, fmt.Errorf("%w: spherical joint needs a parent and a child segment", ErrBadParams)
	}
	return &Joint{name: name, kind: Spherical, parent: parent, child: child}, nil
}

// NewUniversal is a spherical coincidence plus one angle constraint
// between a parent natural axis and a child natural axis.
func NewUniversal(name string, parent, child *segment.Segment, parentAxis, childAxis nat.Axis, theta float64) (*Joint, error) {
	if parent == nil || child == nil {
		return nil, fmt.Errorf("%w: universal joint needs a parent and a child segment", ErrBadParams)
	}
	return &Joint{
		name:       name,
		kind:       Universal,
		parent:     parent,
		child:      child,
		parentAxes: []nat.Axis{parentAxis},
		childAxes:  []nat.Axis{childAxis},
		theta:      []float64{theta},
	}, nil
}

// NewHinge is a spherical coincidence plus two angle constraints; the
// axis and angle slices must hold exactly two entries each.
func NewHinge(name string, parent, child *segment.Segment, parentAxes, childAxes []nat.Axis, theta []float64) (*Joint, error) {
	if parent == nil || child == nil {
		return nil, fmt.Errorf("%w: hinge joint needs a parent and a child segment", ErrBadParams)
	}
	if len(parentAxes) != 2 {
		return nil, fmt.Errorf("%w: hinge needs 2 parent axes, got %d", ErrBadParams, len(parentAxes))
	}
	if len(childAxes) != 2 {
		return nil, fmt.Errorf("%w: hinge needs 2 child axes, got %d", ErrBadParams, len(childAxes))
	}
	if len(theta) != 2 {
		return nil, fmt.Errorf("%w: hinge needs 2 angles, got %d", ErrBadParams, len(theta))
	}
	return &Joint{
		name:       name,
		kind:       Hinge,
		parent:     parent,
		child:      child,
		parentAxes: append([]nat.Axis(nil), parentAxes...),
		childAxes:  append([]nat.Axis(nil), childAxes...),
		theta:      append([]float64(nil), theta...),
	}, nil
}

// ConstantLengthOption tunes the anchor points of a constant-length
// joint; the defaults are the parent's distal and the child's
// proximal end.
type ConstantLengthOption func(*Joint)

// WithParentPoint anchors the parent side at a point given in the
// parent's natural basis.
func WithParentPoint(p nat.Vector) ConstantLengthOption {
	return func(j *Joint) { j.parentPoint = p }
}

// WithChildPoint anchors the child side at a point given in the
// child's natural basis.
func WithChildPoint(p nat.Vector) ConstantLengthOption {
	return func(j *Joint) { j.childPoint = p }
}

// NewConstantLength keeps the Euclidean distance between one anchor
// point on each segment equal to length.
func NewConstantLength(name string, parent, child *segment.Segment, length float64, opts ...ConstantLengthOption) (*Joint, error) {
	if parent == nil || child == nil {
		return nil, fmt.Errorf("%w: constant-length joint needs a parent and a child segment", ErrBadParams)
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: length %g must be positive", ErrBadParams, length)
	}
	j := &Joint{
		name:        name,
		kind:        ConstantLength,
		parent:      parent,
		child:       child,
		length:      length,
		parentPoint: nat.Distal,
		childPoint:  nat.Proximal,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// NewSphereOnPlane is declared for completeness but its contact
// constraint formulation is not implemented; construction always
// fails with ErrUnimplemented.
func NewSphereOnPlane(name string, parent, child *segment.Segment) (*Joint, error) {
	return nil, fmt.Errorf("%w: sphere-on-plane", ErrUnimplemented)
}

// NewGroundSpherical pins the child's proximal point to a fixed
// global-frame anchor point.
func NewGroundSpherical(name string, child *segment.Segment, anchor [3]float64) (*Joint, error) {
	if child == nil {
		return nil, fmt.Errorf("%w: ground spherical joint needs a child segment", ErrBadParams)
	}
	return &Joint{name: name, kind: GroundSpherical, child: child, groundPoint: anchor}, nil
}

// NewGroundUniversal anchors the child's proximal point to a global
// point and constrains the angle between a fixed cartesian axis and a
// child natural axis.
func NewGroundUniversal(name string, child *segment.Segment, anchor [3]float64, groundAxis nat.CartesianAxis, childAxis nat.Axis, theta float64) (*Joint, error) {
	if child == nil {
		return nil, fmt.Errorf("%w: ground universal joint needs a child segment", ErrBadParams)
	}
	return &Joint{
		name:        name,
		kind:        GroundUniversal,
		child:       child,
		groundPoint: anchor,
		groundAxes:  []nat.CartesianAxis{groundAxis},
		childAxes:   []nat.Axis{childAxis},
		theta:       []float64{theta},
	}, nil
}

// NewGroundHinge anchors the child's proximal point to a global point
// and constrains two cartesian-axis / natural-axis angle pairs.
func NewGroundHinge(name string, child *segment.Segment, anchor [3]float64, groundAxes []nat.CartesianAxis, childAxes []nat.Axis, theta []float64) (*Joint, error) {
	if child == nil {
		return nil, fmt.Errorf("%w: ground hinge joint needs a child segment", ErrBadParams)
	}
	if len(groundAxes) != 2 {
		return nil, fmt.Errorf("%w: ground hinge needs 2 cartesian axes, got %d", ErrBadParams, len(groundAxes))
	}
	if len(childAxes) != 2 {
		return nil, fmt.Errorf("%w: ground hinge needs 2 child axes, got %d", ErrBadParams, len(childAxes))
	}
	if len(theta) != 2 {
		return nil, fmt.Errorf("%w: ground hinge needs 2 angles, got %d", ErrBadParams, len(theta))
	}
	return &Joint{
		name:        name,
		kind:        GroundHinge,
		child:       child,
		groundPoint: anchor,
		groundAxes:  append([]nat.CartesianAxis(nil), groundAxes...),
		childAxes:   append([]nat.Axis(nil), childAxes...),
		theta:       append([]float64(nil), theta...),
	}, nil
}

// NewGroundWeld freezes all 12 child coordinates at a target
// configuration.
func NewGroundWeld(name string, child *segment.Segment, target []float64) (*Joint, error) {
	if child == nil {
		return nil, fmt.Errorf("%w: ground weld joint needs a child segment", ErrBadParams)
	}
	if len(target) != 12 {
		return nil, fmt.Errorf("%w: ground weld target needs 12 coordinates, got %d", ErrBadParams, len(target))
	}
	return &Joint{
		name:       name,
		kind:       GroundWeld,
		child:      child,
		weldTarget: append([]float64(nil), target...),
	}, nil
}

// NewGroundFree declares an unconstrained root segment; it
// contributes zero constraint rows and exists so a kinematic tree can
// name its floating base explicitly.
func NewGroundFree(name string, child *segment.Segment) (*Joint, error) {
	if child == nil {
		return nil, fmt.Errorf("%w: ground free joint needs a child segment", ErrBadParams)
	}
	return &Joint{name: name, kind: GroundFree, child: child}, nil
}
