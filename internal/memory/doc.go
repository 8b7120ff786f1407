// Package memory configures the Go soft memory limit and provides
// backpressure for the thumbnail watcher.
//
// Containers get OOM-killed when they exceed their memory limit. GOMAXPROCS
// follows cgroup CPU limits automatically but GOMEMLIMIT does not, so
// [Apply] derives it from the container limit:
//
//   - GOMEMLIMIT: if set, the runtime has already applied it; it is only
//     reported.
//   - MEMORY_LIMIT: container limit in bytes, typically from the Kubernetes
//     Downward API.
//   - MEMORY_RATIO: share of MEMORY_LIMIT given to the Go heap (default
//     0.85). Lower it when ffmpeg processes or libvips need more room.
//
// Example Downward API wiring:
//
//	env:
//	- name: MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
//
// # Backpressure
//
// A [Monitor] samples heap usage. Above the critical water mark it pauses:
// watcher workers call [Monitor.WaitIfPaused] before starting a generation
// and block until usage drops below the high water mark.
package memory
