// Package testutil provides deterministic test data for factormerge.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Factors
//
//	rng := testutil.NewRNG(42)
//	vecs := rng.Vectors(1000, 32, 0)          // ids 0..999, values in [-1, 1)
//	m := rng.FactorModel(1000, 500, 32, 1e6)  // column ids start at 1e6
//
// # Orthonormal Bases
//
// OrthonormalBasis returns dim unit vectors that are mutually orthogonal.
// Using the same basis as model A's columns and model B's rows makes the
// translation matrix the identity, so merged rows equal A's rows.
package testutil
