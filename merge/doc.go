// Package merge combines two compatible factor models into one.
//
// Model A maps X→Y and model B maps Y→Z. The merged model maps X→Z:
//
//  1. Translation: T = Y(A)ᵀ·X(B), the sum over every id k shared by A's
//     column factors and B's row factors of outer(A.Y[k], B.X[k]). Ids present
//     on one side only contribute nothing. T is accumulated in float64.
//  2. Projection: every row vector x of A becomes Tᵀ·x, i.e. it is re-expressed
//     in B's coordinate space.
//  3. B's column factors are carried through unchanged (shared, not copied).
//  4. Every merged row maps to the shared empty IDSet, since A's known items
//     were Y ids and mean nothing in Z.
//
// # Concurrency
//
// Both phases are split into chunks of ids processed by an errgroup. During
// translation every chunk accumulates into a private partial matrix; partials
// are summed in chunk order once all workers finish, so the result does not
// depend on scheduling. Projection writes to disjoint result slots.
//
// A Merger keeps no state between calls and is safe for concurrent use.
//
// # Overlap
//
// Merge reports how many ids A's columns and B's rows share (Stats.Overlap).
// Zero overlap yields an all-zero translation and is logged as a warning.
// WithMinOverlap turns a low overlap into ErrInsufficientOverlap.
package merge
