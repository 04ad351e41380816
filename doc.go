// Package factormerge merges two latent-factor recommendation models.
//
// Model A maps users to items (X→Y) and model B maps items to a third id
// space (Y→Z). When A's column ids line up with B's row ids, the two can be
// collapsed into one model X→Z:
//
//	T      = Σ_k  outer(A.Y[k], B.X[k])     for every id k in both
//	row'   = Tᵀ · A.X[row]                   for every row of A
//	column = B.Y                             carried through unchanged
//
// Every merged row starts with an empty set of known items, so nothing is
// filtered from recommendations until the model is retrained.
//
// # Quick Start
//
//	ctx := context.Background()
//	models := store.New(blobstore.NewLocalStore("./models"))
//
//	tool := factormerge.New(
//	    factormerge.WithLogger(factormerge.NewTextLogger(slog.LevelInfo)),
//	    factormerge.WithMergeOptions(merge.WithWorkers(8)),
//	)
//	stats, err := tool.Run(ctx,
//	    factormerge.Ref{Store: models, Name: "user-item"},
//	    factormerge.Ref{Store: models, Name: "item-category"},
//	    factormerge.Ref{Store: models, Name: "user-category"},
//	)
//
// # Storage
//
// Models are read and written through store.ModelStore. The default
// implementation sits on a blobstore.BlobStore, so the same code works against
// the local filesystem, S3, MinIO or Redis. Writes are atomic: a failed run
// never leaves a partial model behind.
//
// # Errors
//
// Run wraps every failure in a *PhaseError naming the step that failed.
// errors.As reaches the underlying *store.StoreReadError,
// *store.StoreWriteError or *model.DimensionMismatchError; errors.Is matches
// ErrEmptyModel and ErrInsufficientOverlap.
package factormerge
