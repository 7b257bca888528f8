// Package model assembles segments and joints into a constrained
// multibody mechanism and evaluates its dynamics.
//
// A [Model] owns ordered collections of [segment.Segment] and
// [joint.Joint]; the segment insertion order fixes the layout of the
// stacked coordinate vector Q (12 rows per segment) and of every
// system-level matrix derived from it:
//
//   - [Model.RigidBodyConstraints]: 6 rows per segment, block diagonal
//   - [Model.JointConstraints]: the joints' rows in insertion order
//   - [Model.HolonomicConstraints]: both stacked, with matching
//     Jacobian and Jacobian-derivative accessors
//   - [Model.MassMatrix]: block-diagonal 12n x 12n generalized mass
//
// [Model.ForwardDynamics] solves the augmented KKT system for the
// accelerations and the Lagrange multipliers, optionally with
// Baumgarte [Stabilization] feedback on the constraint residuals.
//
// All evaluation methods take the arithmetic backend chosen at
// construction ([WithBackend]); with the symbolic backend they return
// unevaluated expression graphs instead of numbers.
package model
