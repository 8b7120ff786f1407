package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generation metrics
var (
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videothumbs_generations_total",
			Help: "Total number of thumbnail generation runs by outcome",
		},
		[]string{"status"}, // "success", "no_thumbnail", "no_frames", "encoding_error", "error"
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "videothumbs_generation_duration_seconds",
			Help:    "Wall time of one sample-score-render run",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	FramesScored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "videothumbs_frames_scored",
			Help:    "Number of usable frames scored per run",
			Buckets: []float64{1, 5, 10, 25, 50, 75, 100, 250},
		},
	)

	OrientationCorrections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videothumbs_orientation_corrections_total",
			Help: "Orientation corrections applied to sampled videos",
		},
		[]string{"correction"},
	)

	ThumbnailBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "videothumbs_thumbnail_bytes",
			Help:    "Encoded thumbnail size in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 10),
		},
	)
)

// Storage metrics
var (
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videothumbs_storage_operations_total",
			Help: "Thumbnail storage operations by backend, operation and status",
		},
		[]string{"backend", "operation", "status"},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videothumbs_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "videothumbs_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "videothumbs_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videothumbs_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "videothumbs_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// Filesystem metrics
var (
	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videothumbs_filesystem_stale_errors_total",
			Help: "ESTALE errors seen on filesystem operations",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videothumbs_filesystem_retry_attempts_total",
			Help: "Filesystem operations retried after a stale file handle",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videothumbs_filesystem_retry_failures_total",
			Help: "Filesystem operations that still failed after all retries",
		},
		[]string{"operation", "volume"},
	)
)

// Watcher metrics
var (
	WatcherScansTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "videothumbs_watcher_scans_total",
			Help: "Total number of media directory scans",
		},
	)

	WatcherVideosQueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "videothumbs_watcher_videos_queued_total",
			Help: "Videos queued for thumbnail generation by the watcher",
		},
	)

	WatcherRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "videothumbs_watcher_running",
			Help: "Whether a scan is currently in progress (1 = running, 0 = idle)",
		},
	)

	WatcherLastScanTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "videothumbs_watcher_last_scan_timestamp",
			Help: "Unix timestamp of the last completed scan",
		},
	)
)

// Process metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "videothumbs_memory_usage_ratio",
			Help: "Heap allocation as a ratio of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "videothumbs_memory_paused",
			Help: "Whether generation is paused for memory pressure (1 = paused, 0 = running)",
		},
	)

	GoMemLimit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "videothumbs_go_memlimit_bytes",
			Help: "Configured GOMEMLIMIT in bytes (0 when unset)",
		},
	)

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "videothumbs_app_info",
			Help: "Build information",
		},
		[]string{"version", "commit", "go_version"},
	)
)
