// Package linalg provides the arithmetic substrate for the mechanics
// engine.
//
// Every constraint, Jacobian and dynamics computation is written once
// against the [Backend] interface and runs on either substrate:
//
//   - [Dense]: immediate float64 arithmetic on gonum matrices
//   - [Symbolic]: a recorded expression graph with deferred evaluation
//
// A symbolic expression is turned into numbers with [Eval] and an
// [Env] of variable bindings. There is no conversion in the other
// direction.
package linalg
