// Package fs abstracts the few filesystem operations the local blob store
// needs, so tests can inject write, sync, close and rename failures.
//
// Production code uses [Default] ([LocalFS]). Tests wrap it in a [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 1024})
//
// Operations take no context.Context; local syscalls are not interruptible.
package fs
