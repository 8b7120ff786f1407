package thumbnail

import (
	"fmt"
	"path/filepath"
	"sync"

	"videothumbs/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
)

// InitVips starts libvips once per process, routing its log output through
// the logging package at a matching level.
func InitVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return
	}

	var vipsLevel vips.LogLevel
	switch logging.GetLevel() {
	case logging.LevelDebug:
		vipsLevel = vips.LogLevelInfo
	case logging.LevelInfo:
		vipsLevel = vips.LogLevelWarning
	case logging.LevelWarn:
		vipsLevel = vips.LogLevelError
	default:
		vipsLevel = vips.LogLevelCritical
	}

	vips.LoggingSettings(func(domain string, level vips.LogLevel, msg string) {
		switch {
		case level <= vips.LogLevelCritical:
			logging.Error("[%s] %s", domain, msg)
		case level == vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}, vipsLevel)

	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsInitialized = true
	logging.Info("libvips initialized (version: %s)", vips.Version)
}

// ShutdownVips releases libvips. govips cannot be restarted afterwards.
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		logging.Info("libvips shutdown complete")
	}
}

// VipsRenderer renders with libvips. The crop box and fit rules are the same
// as ImagingRenderer's; the resampling kernel is libvips' own (lanczos3).
type VipsRenderer struct {
	Quality int
}

// NewVipsRenderer initializes libvips and returns a renderer.
func NewVipsRenderer(quality int) *VipsRenderer {
	InitVips()
	return &VipsRenderer{Quality: quality}
}

func (r *VipsRenderer) Name() string {
	return "vips"
}

func (r *VipsRenderer) Render(framePath string, spec Spec) ([]byte, error) {
	ref, err := vips.LoadImageFromFile(framePath, vips.NewImportParams())
	if err != nil {
		return nil, fmt.Errorf("vips failed to load frame: %w", err)
	}
	defer ref.Close()

	if spec.CropsToSquare() {
		box := CropBox(ref.Width(), ref.Height())
		if err := ref.ExtractArea(box.Min.X, box.Min.Y, box.Dx(), box.Dy()); err != nil {
			return nil, fmt.Errorf("vips crop failed: %w", err)
		}
	}

	if err := ref.ThumbnailWithSize(spec.Size.Width, spec.Size.Height, vips.InterestingNone, vips.SizeDown); err != nil {
		return nil, fmt.Errorf("vips resize failed: %w", err)
	}

	quality := r.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	buf, _, err := ref.ExportJpeg(&vips.JpegExportParams{
		Quality:        quality,
		StripMetadata:  true,
		OptimizeCoding: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: vips export: %v", ErrEncoding, err)
	}

	logging.Debug("Vips rendered %s at %s (%d bytes)", filepath.Base(framePath), spec.Size, len(buf))
	return buf, nil
}
