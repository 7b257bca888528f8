package segment

import "errors"

var (
	// ErrDegenerateShape indicates shape parameters whose Gram matrix
	// is not positive definite: the u, v, w frame would be flat or
	// have zero length.
	ErrDegenerateShape = errors.New("segment: degenerate shape parameters")

	// ErrBadInertia indicates non-physical inertial parameters.
	ErrBadInertia = errors.New("segment: invalid inertial parameters")

	// ErrNoInertia indicates a request for an inertial quantity on a
	// segment built without inertial parameters.
	ErrNoInertia = errors.New("segment: inertial parameters not set")
)
