// Package resource implements the Controller that bounds what a merge may consume.
//
// The Controller governs three resource types:
//
//   - Memory: reservations for translation partial sums and projected vectors
//   - Workers: concurrent accumulation/projection goroutines
//   - IO: a token bucket throttling model reads and writes
//
// # Usage
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   1 << 30,
//	    MaxWorkers:         8,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//
//	if err := rc.AcquireMemory(ctx, n); err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(n)
//
//	reader := resource.NewRateLimitedReader(ctx, r, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully: they become no-ops.
package resource
