package metrics

import (
	"errors"
	"time"

	"videothumbs/internal/orientation"
	"videothumbs/internal/videothumb"
)

// Outcome classifies a generation error for the status label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case videothumb.IsSoft(err):
		return "no_thumbnail"
	case errors.Is(err, videothumb.ErrNoUsableFrames):
		return "no_frames"
	case errors.Is(err, videothumb.ErrEncoding):
		return "encoding_error"
	default:
		return "error"
	}
}

// ObserveGeneration records one run.
func ObserveGeneration(res *videothumb.Result, err error, elapsed time.Duration) {
	GenerationsTotal.WithLabelValues(Outcome(err)).Inc()
	GenerationDuration.Observe(elapsed.Seconds())
	if res == nil {
		return
	}
	FramesScored.Observe(float64(res.FramesScored))
	if res.Orientation != orientation.None {
		OrientationCorrections.WithLabelValues(res.Orientation.String()).Inc()
	}
	for _, th := range res.Thumbnails {
		ThumbnailBytes.Observe(float64(len(th.Data)))
	}
}

// ObserveStorage records one storage operation.
func ObserveStorage(backend, operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StorageOperationsTotal.WithLabelValues(backend, operation, status).Inc()
}
