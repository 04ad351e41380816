// Package model defines the factor model types merged by factormerge.
//
// # Factor Models
//
// A FactorModel approximates a large sparse association matrix (for example
// users × items) as the product of two low-rank factor mappings:
//
//   - X: row id → latent vector (all of length L1)
//   - Y: column id → latent vector (all of length L2)
//   - KnownItems: row id → set of column ids already associated with it
//
// Models are treated as immutable once loaded. Vectors are stored as float32,
// identifiers are 64-bit.
//
// # Identifier Sets
//
// KnownItems values are IDSets, immutable roaring bitmaps over uint64 ids.
// EmptyIDSet returns a single shared empty instance that is safe to reference
// from any number of entries:
//
//	empty := model.EmptyIDSet()
//	for _, id := range merged.X.IDs() {
//	    merged.KnownItems[id] = empty
//	}
package model
