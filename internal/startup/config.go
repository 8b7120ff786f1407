package startup

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"videothumbs/internal/logging"
	"videothumbs/internal/mediatypes"
	"videothumbs/internal/memory"
	"videothumbs/internal/storage"
	"videothumbs/internal/thumbnail"
	"videothumbs/internal/videothumb"

	"github.com/caarlos0/env/v11"
)

// MinIOConfig is the object storage section (MINIO_*).
type MinIOConfig struct {
	Endpoint  string `env:"ENDPOINT"   envDefault:"minio:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey string `env:"SECRET_KEY" envDefault:"minioadmin"`
	UseSSL    bool   `env:"USE_SSL"    envDefault:"false"`
	Bucket    string `env:"BUCKET"     envDefault:"thumbnails"`
	Prefix    string `env:"PREFIX"`
}

// Config holds all application configuration
type Config struct {
	MediaDir     string        `env:"MEDIA_DIR"     envDefault:"/media"`
	OutputDir    string        `env:"OUTPUT_DIR"    envDefault:"/thumbnails"`
	TempDir      string        `env:"TEMP_DIR"      envDefault:"/tmp/videothumbs"`
	DatabaseDir  string        `env:"DATABASE_DIR"  envDefault:"/database"`
	Port         string        `env:"PORT"          envDefault:"8080"`
	ScanInterval time.Duration `env:"SCAN_INTERVAL" envDefault:"5m"`
	Workers      int           `env:"THUMBNAIL_WORKERS"`

	Sizes            []thumbnail.Size `env:"THUMBNAIL_SIZES"    envDefault:"100x100,160x90" envSeparator:","`
	AutoCrop         bool             `env:"AUTO_CROP"          envDefault:"true"`
	SampleFrames     int              `env:"SAMPLE_FRAMES"      envDefault:"100"`
	ResampleFilter   string           `env:"RESAMPLE_FILTER"    envDefault:"lanczos"`
	JPEGQuality      int              `env:"JPEG_QUALITY"       envDefault:"75"`
	DecodeTimeout    time.Duration    `env:"DECODE_TIMEOUT"     envDefault:"2m"`
	FrameFormat      string           `env:"FRAME_FORMAT"       envDefault:"jpg"`
	FFmpegPath       string           `env:"FFMPEG_PATH"        envDefault:"ffmpeg"`
	CorrectInProcess bool             `env:"CORRECT_IN_PROCESS" envDefault:"false"`
	UseVips          bool             `env:"USE_VIPS"           envDefault:"false"`

	StorageBackend string      `env:"STORAGE_BACKEND" envDefault:"fs"`
	MinIO          MinIOConfig `envPrefix:"MINIO_"`

	GoMemLimit  string  `env:"GOMEMLIMIT"`
	MemoryLimit int64   `env:"MEMORY_LIMIT"`
	MemoryRatio float64 `env:"MEMORY_RATIO" envDefault:"0.85"`

	LogHealthChecks bool `env:"LOG_HEALTH_CHECKS" envDefault:"true"`

	// Derived paths
	DatabasePath string `env:"-"`
}

// ParseConfig reads the configuration from environ (nil means the process
// environment) and validates it. It touches no directories.
func ParseConfig(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.FrameFormat = strings.ToLower(cfg.FrameFormat)
	cfg.StorageBackend = strings.ToLower(cfg.StorageBackend)
	cfg.DatabasePath = filepath.Join(cfg.DatabaseDir, "videothumbs.db")
	return cfg, nil
}

// Validate checks value ranges the environment parser cannot.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Sizes) == 0 {
		errs = append(errs, errors.New("THUMBNAIL_SIZES: at least one size is required"))
	}
	for _, s := range c.Sizes {
		if s.Width <= 0 || s.Height <= 0 {
			errs = append(errs, fmt.Errorf("THUMBNAIL_SIZES: %s is not a positive size", s))
		}
	}
	if c.SampleFrames < 1 {
		errs = append(errs, fmt.Errorf("SAMPLE_FRAMES: %d, must be at least 1", c.SampleFrames))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("JPEG_QUALITY: %d, must be 1-100", c.JPEGQuality))
	}
	if c.DecodeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("DECODE_TIMEOUT: %v, must be positive", c.DecodeTimeout))
	}
	if !mediatypes.ValidFrameFormat(c.FrameFormat) {
		errs = append(errs, fmt.Errorf("FRAME_FORMAT: unsupported %q", c.FrameFormat))
	}
	if _, err := thumbnail.ParseFilter(c.ResampleFilter); err != nil {
		errs = append(errs, fmt.Errorf("RESAMPLE_FILTER: %w", err))
	}
	switch strings.ToLower(c.StorageBackend) {
	case "fs", "minio":
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND: unsupported %q (want fs or minio)", c.StorageBackend))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("THUMBNAIL_WORKERS: %d, must not be negative", c.Workers))
	}

	return errors.Join(errs...)
}

// Specs returns one thumbnail spec per configured size.
func (c *Config) Specs() []thumbnail.Spec {
	specs := make([]thumbnail.Spec, 0, len(c.Sizes))
	for _, s := range c.Sizes {
		specs = append(specs, thumbnail.Spec{Size: s, Crop: c.AutoCrop})
	}
	return specs
}

// GeneratorConfig returns the settings the generator core needs.
func (c *Config) GeneratorConfig() videothumb.Config {
	return videothumb.Config{
		TempDir:          c.TempDir,
		SampleCount:      c.SampleFrames,
		Filter:           c.ResampleFilter,
		JPEGQuality:      c.JPEGQuality,
		DecodeTimeout:    c.DecodeTimeout,
		FrameFormat:      c.FrameFormat,
		FFmpegPath:       c.FFmpegPath,
		CorrectInProcess: c.CorrectInProcess,
		UseVips:          c.UseVips,
	}
}

// StorageConfig returns the MinIO client settings.
func (c *Config) StorageConfig() storage.MinIOConfig {
	return storage.MinIOConfig{
		Endpoint:  c.MinIO.Endpoint,
		AccessKey: c.MinIO.AccessKey,
		SecretKey: c.MinIO.SecretKey,
		UseSSL:    c.MinIO.UseSSL,
		Bucket:    c.MinIO.Bucket,
		Prefix:    c.MinIO.Prefix,
	}
}

// MemoryLimits returns the GOMEMLIMIT inputs.
func (c *Config) MemoryLimits() memory.Limits {
	return memory.Limits{
		GoMemLimit:     c.GoMemLimit,
		ContainerLimit: c.MemoryLimit,
		Ratio:          c.MemoryRatio,
	}
}

// LoadConfig loads configuration from the environment, logs it and
// prepares the directories the service writes to.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	cfg, err := ParseConfig(nil)
	if err != nil {
		return nil, err
	}

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	cfg.log()

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")
	if err := cfg.prepareDirectories(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) log() {
	sizes := make([]string, 0, len(c.Sizes))
	for _, s := range c.Sizes {
		sizes = append(sizes, s.String())
	}

	logging.Info("  MEDIA_DIR:           %s", c.MediaDir)
	logging.Info("  OUTPUT_DIR:          %s", c.OutputDir)
	logging.Info("  TEMP_DIR:            %s", c.TempDir)
	logging.Info("  DATABASE_DIR:        %s", c.DatabaseDir)
	logging.Info("  PORT:                %s", c.Port)
	logging.Info("  SCAN_INTERVAL:       %v", c.ScanInterval)
	logging.Info("  THUMBNAIL_SIZES:     %s", strings.Join(sizes, ","))
	logging.Info("  AUTO_CROP:           %v", c.AutoCrop)
	logging.Info("  SAMPLE_FRAMES:       %d", c.SampleFrames)
	logging.Info("  RESAMPLE_FILTER:     %s", c.ResampleFilter)
	logging.Info("  JPEG_QUALITY:        %d", c.JPEGQuality)
	logging.Info("  DECODE_TIMEOUT:      %v", c.DecodeTimeout)
	logging.Info("  FRAME_FORMAT:        %s", c.FrameFormat)
	logging.Info("  FFMPEG_PATH:         %s", c.FFmpegPath)
	logging.Info("  CORRECT_IN_PROCESS:  %v", c.CorrectInProcess)
	logging.Info("  USE_VIPS:            %v", c.UseVips)
	logging.Info("  STORAGE_BACKEND:     %s", c.StorageBackend)
	if c.StorageBackend == "minio" {
		logging.Info("  MINIO_ENDPOINT:      %s", c.MinIO.Endpoint)
		logging.Info("  MINIO_BUCKET:        %s", c.MinIO.Bucket)
		logging.Info("  MINIO_USE_SSL:       %v", c.MinIO.UseSSL)
	}
	if c.Workers > 0 {
		logging.Info("  THUMBNAIL_WORKERS:   %d", c.Workers)
	} else {
		logging.Info("  THUMBNAIL_WORKERS:   auto")
	}
	logging.Info("  LOG_HEALTH_CHECKS:   %v", c.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
}

func (c *Config) prepareDirectories() error {
	for _, d := range []*string{&c.MediaDir, &c.OutputDir, &c.TempDir, &c.DatabaseDir} {
		abs, err := filepath.Abs(*d)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", *d, err)
		}
		*d = abs
	}
	c.DatabasePath = filepath.Join(c.DatabaseDir, "videothumbs.db")

	logging.Info("  Media directory (absolute):    %s", c.MediaDir)
	logging.Info("  Database directory (absolute): %s", c.DatabaseDir)

	// The watcher tolerates a missing media directory until it appears
	if err := ensureDirectory(c.MediaDir, "media"); err != nil {
		logging.Warn("  Media directory issue: %v", err)
	}

	required := []struct{ path, name string }{
		{c.DatabaseDir, "database"},
		{c.TempDir, "temp"},
	}
	if c.StorageBackend == "fs" {
		logging.Info("  Output directory (absolute):   %s", c.OutputDir)
		required = append(required, struct{ path, name string }{c.OutputDir, "output"})
	}

	for _, r := range required {
		if err := ensureDirectory(r.path, r.name); err != nil {
			return fmt.Errorf("%s directory error: %w", r.name, err)
		}
		if err := testWriteAccess(r.path); err != nil {
			return fmt.Errorf("%s directory is not writable: %w", r.name, err)
		}
		logging.Info("  [OK] %s directory is writable", r.name)
	}
	return nil
}
