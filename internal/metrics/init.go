package metrics

import "videothumbs/internal/orientation"

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup.
func InitializeMetrics() {
	for _, status := range []string{"success", "no_thumbnail", "no_frames", "encoding_error", "error"} {
		GenerationsTotal.WithLabelValues(status)
	}

	for _, c := range []orientation.Correction{orientation.Rotate90, orientation.Rotate180, orientation.Rotate270} {
		OrientationCorrections.WithLabelValues(c.String())
	}

	for _, backend := range []string{"fs", "minio"} {
		for _, op := range []string{"save", "delete"} {
			StorageOperationsTotal.WithLabelValues(backend, op, "success")
			StorageOperationsTotal.WithLabelValues(backend, op, "error")
		}
	}

	for _, op := range []string{"initialize_schema", "record_run", "list_thumbnails", "get_video", "delete_video"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
