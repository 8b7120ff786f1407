package memory

import (
	"math"
	"runtime/debug"
	"strconv"

	"videothumbs/internal/logging"
	"videothumbs/internal/metrics"
)

// DefaultMemoryRatio is the share of container memory given to the Go heap.
// The rest is left for ffmpeg processes and libvips buffers.
const DefaultMemoryRatio = 0.85

// Limits is the memory configuration read at startup.
type Limits struct {
	// GoMemLimit is the raw GOMEMLIMIT value; when set it wins.
	GoMemLimit string
	// ContainerLimit is the container memory limit in bytes (MEMORY_LIMIT).
	ContainerLimit int64
	// Ratio is the share of ContainerLimit to use (MEMORY_RATIO).
	Ratio float64
}

// ConfigResult holds the result of memory configuration
type ConfigResult struct {
	// Configured indicates whether GOMEMLIMIT was set
	Configured bool

	// Source is "GOMEMLIMIT", "MEMORY_LIMIT", or "none"
	Source string

	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// Apply sets the Go soft memory limit from l.
// Call this early in main() before significant allocations.
func Apply(l Limits) ConfigResult {
	result := ConfigResult{Source: "none"}

	// The runtime already parsed GOMEMLIMIT; just report it
	if l.GoMemLimit != "" {
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.Source = "GOMEMLIMIT"
			result.GoMemLimit = limit
		}
		metrics.GoMemLimit.Set(float64(result.GoMemLimit))
		logging.Info("GOMEMLIMIT set via environment: %s", l.GoMemLimit)
		return result
	}

	if l.ContainerLimit <= 0 {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT will not be configured automatically")
		metrics.GoMemLimit.Set(0)
		return result
	}

	ratio := l.Ratio
	if ratio <= 0 || ratio > 1.0 {
		if ratio != 0 {
			logging.Warn("MEMORY_RATIO %.2f out of range (0.0-1.0), using default %.2f", ratio, DefaultMemoryRatio)
		}
		ratio = DefaultMemoryRatio
	}

	goMemLimit := int64(float64(l.ContainerLimit) * ratio)
	debug.SetMemoryLimit(goMemLimit)
	metrics.GoMemLimit.Set(float64(goMemLimit))

	result.Configured = true
	result.Source = "MEMORY_LIMIT"
	result.ContainerLimit = l.ContainerLimit
	result.GoMemLimit = goMemLimit
	result.Ratio = ratio

	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s container limit)",
		formatBytes(goMemLimit),
		ratio*100,
		formatBytes(l.ContainerLimit),
	)

	return result
}

// formatBytes formats bytes into human-readable string
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
