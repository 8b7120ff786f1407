package workers

import (
	"runtime"
	"sync/atomic"
)

var override atomic.Int64

// SetOverride fixes the worker count returned by every helper, still capped
// by each caller's limit. Zero or negative restores the automatic
// calculation. Startup calls it with THUMBNAIL_WORKERS.
func SetOverride(n int) {
	if n < 0 {
		n = 0
	}
	override.Store(int64(n))
}

// Override returns the configured override, or 0 when none is set.
func Override() int {
	return int(override.Load())
}

// Count returns the number of workers for a given task type.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//   - 1.5 for mixed tasks
//
// The limit parameter caps the worker count. Use 0 for no limit.
func Count(multiplier float64, limit int) int {
	if count := Override(); count > 0 {
		if limit > 0 && count > limit {
			return limit
		}
		return count
	}

	// GOMAXPROCS is automatically set to container CPU limit in Go 1.19+
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns worker count for I/O-bound tasks (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// ForMixed returns worker count for mixed tasks (1.5 per CPU). Thumbnail
// generation (decode, score, encode, store) is a mixed task.
func ForMixed(limit int) int {
	return Count(1.5, limit)
}
