package model

import "errors"

var (
	// ErrDuplicateName indicates a segment or joint name already
	// present in the model.
	ErrDuplicateName = errors.New("model: duplicate name")

	// ErrUnknownSegment indicates a reference to a segment the model
	// does not own.
	ErrUnknownSegment = errors.New("model: unknown segment")

	// ErrMassMatrixUndefined indicates a dynamics request while at
	// least one segment lacks inertial parameters; the model is in
	// kinematics-only mode.
	ErrMassMatrixUndefined = errors.New("model: mass matrix undefined (segment without inertial parameters)")

	// ErrDimension indicates a coordinate vector whose length does
	// not match the model's layout.
	ErrDimension = errors.New("model: coordinate dimension mismatch")

	// ErrInitialViolation indicates initial coordinates that do not
	// satisfy the holonomic constraints.
	ErrInitialViolation = errors.New("model: initial coordinates violate constraints")
)
