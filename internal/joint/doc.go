// Package joint implements the constraint library coupling segments
// to each other and to the ground.
//
// Every variant is a [Kind] of the single [Joint] type; dispatch is a
// switch on the kind, and the set of variants is closed:
//
//   - [Spherical], [Universal], [Hinge]: point coincidence plus 0, 1
//     or 2 axis-angle constraints (3, 4, 5 rows)
//   - [ConstantLength]: one squared-distance row between two anchor
//     points
//   - [GroundSpherical], [GroundUniversal], [GroundHinge]: the same
//     family anchored to a fixed global point
//   - [GroundWeld]: all 12 coordinates frozen at a target
//   - [GroundFree]: a named floating base, zero rows
//
// A joint is immutable after construction and its evaluation methods
// are pure functions of the coordinate slices, so joints are safe for
// concurrent evaluation.
package joint
