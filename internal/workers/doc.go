/*
Package workers sizes worker pools in containerized environments.

runtime.NumCPU returns the host's CPU count even when a cgroup limits the
container to a fraction of it. GOMAXPROCS follows the container limit (Go
1.19+), so the helpers here scale from it:

	workers.ForCPU(8)   // 1 per CPU, at most 8
	workers.ForIO(16)   // 2 per CPU, at most 16
	workers.ForMixed(8) // 1.5 per CPU, at most 8

The directory watcher uses ForMixed: each job runs a decoder process, scores
frames in Go and writes the result to storage.

# Override

Operators can pin the count with THUMBNAIL_WORKERS. Startup reads it with the
rest of the configuration and calls SetOverride; the limit passed by each
caller still applies.

	env:
	- name: THUMBNAIL_WORKERS
	  value: "4"

With a 2-CPU limit and no override, ForCPU(8) returns 2, ForIO(8) returns 4
and ForMixed(8) returns 3.

All functions are safe for concurrent use.
*/
package workers
