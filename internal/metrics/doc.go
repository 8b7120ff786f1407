// Package metrics provides Prometheus instrumentation for videothumbs.
//
// All metrics are registered with the default registry through promauto and
// prefixed with "videothumbs_". Mount promhttp.Handler() to expose them.
//
// # Metric Categories
//
// Generation: run outcomes, run duration, frames scored per run, orientation
// corrections applied and encoded thumbnail sizes.
//
// Storage: save/delete operations per backend and status.
//
// Database: query counts and latency per operation.
//
// Watcher: directory scans, videos queued, running state and last scan time.
//
// # Prometheus Queries
//
// Share of runs that produced nothing because the decoder was unavailable:
//
//	rate(videothumbs_generations_total{status="no_thumbnail"}[1h]) /
//	rate(videothumbs_generations_total[1h])
//
// P95 run time:
//
//	histogram_quantile(0.95, sum(rate(videothumbs_generation_duration_seconds_bucket[5m])) by (le))
package metrics
