package videothumb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"videothumbs/internal/histogram"
	"videothumbs/internal/logging"
	"videothumbs/internal/orientation"
	"videothumbs/internal/sampler"
	"videothumbs/internal/thumbnail"

	"github.com/google/uuid"
)

var (
	// ErrDecoderUnavailable means no thumbnail could be produced because
	// the decoder did not run. Callers treat it as "no thumbnail".
	ErrDecoderUnavailable = sampler.ErrDecoderUnavailable

	// ErrNoUsableFrames means the decoder ran but produced no readable frame.
	ErrNoUsableFrames = histogram.ErrNoFrames

	// ErrEncoding means the selected frame could not be encoded.
	ErrEncoding = thumbnail.ErrEncoding
)

// DefaultSampleCount is the number of leading frames considered.
const DefaultSampleCount = 100

// Config is everything the generator needs; nothing is read from the
// environment.
type Config struct {
	// TempDir receives the sampled frames for the duration of one call.
	TempDir string
	// SampleCount is the number of frames decoded per video.
	SampleCount int
	// Filter names the resample filter (lanczos, catmullrom, linear, ...).
	Filter string
	// JPEGQuality is the output quality, 1-100.
	JPEGQuality int
	// DecodeTimeout bounds the decoder and the metadata probe.
	DecodeTimeout time.Duration
	// FrameFormat is the extension of sampled frames (jpg, png, webp).
	FrameFormat string
	// FFmpegPath is the decoder executable.
	FFmpegPath string
	// CorrectInProcess rotates frames in Go instead of with decoder filters.
	CorrectInProcess bool
	// UseVips renders with libvips instead of pure Go.
	UseVips bool
}

// Thumbnail is one rendered size.
type Thumbnail struct {
	Spec thumbnail.Spec
	Data []byte
}

// Result is what escapes one generation call.
type Result struct {
	RunID        string
	FrameIndex   int
	Score        float64
	FramesScored int
	Orientation  orientation.Correction
	Thumbnails   []Thumbnail
	Duration     time.Duration
}

// Generator produces representative-frame thumbnails. It holds no mutable
// state, so one Generator may serve concurrent calls.
type Generator struct {
	sampleCount int
	resolver    *orientation.Resolver
	sampler     sampler.Sampler
	renderer    thumbnail.Renderer
}

// New wires a Generator from explicit collaborators.
func New(sampleCount int, resolver *orientation.Resolver, s sampler.Sampler, r thumbnail.Renderer) *Generator {
	if sampleCount <= 0 {
		sampleCount = DefaultSampleCount
	}
	return &Generator{
		sampleCount: sampleCount,
		resolver:    resolver,
		sampler:     s,
		renderer:    r,
	}
}

// NewFromConfig wires the ffprobe resolver, the ffmpeg sampler and the
// renderer selected by cfg.
func NewFromConfig(cfg Config) (*Generator, error) {
	var renderer thumbnail.Renderer
	if cfg.UseVips {
		renderer = thumbnail.NewVipsRenderer(cfg.JPEGQuality)
	} else {
		r, err := thumbnail.NewImagingRenderer(cfg.Filter, cfg.JPEGQuality)
		if err != nil {
			return nil, err
		}
		renderer = r
	}

	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "videothumbs")
	}

	resolver := orientation.NewResolver(orientation.FFprobe{Timeout: cfg.DecodeTimeout})
	s := &sampler.FFmpegSampler{
		Binary:           cfg.FFmpegPath,
		TempDir:          tempDir,
		Format:           cfg.FrameFormat,
		Timeout:          cfg.DecodeTimeout,
		CorrectInProcess: cfg.CorrectInProcess,
	}

	logging.Debug("Generator: temp=%s samples=%d renderer=%s", tempDir, cfg.SampleCount, renderer.Name())
	return New(cfg.SampleCount, resolver, s, renderer), nil
}

// Generate renders a single thumbnail for videoPath.
func (g *Generator) Generate(ctx context.Context, videoPath string, spec thumbnail.Spec) (*Result, error) {
	return g.GenerateAll(ctx, videoPath, []thumbnail.Spec{spec})
}

// GenerateAll samples and scores videoPath once and renders every spec from
// the selected frame. Temporary frames are removed before it returns,
// whatever the outcome.
func (g *Generator) GenerateAll(ctx context.Context, videoPath string, specs []thumbnail.Spec) (*Result, error) {
	if len(specs) == 0 {
		return nil, errors.New("no thumbnail sizes requested")
	}
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("video not accessible: %w", err)
	}

	start := time.Now()
	res := &Result{RunID: uuid.NewString()}

	res.Orientation = g.resolver.Resolve(ctx, videoPath)

	frames, err := g.sampler.Sample(ctx, videoPath, g.sampleCount, res.Orientation)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", filepath.Base(videoPath), err)
	}
	defer func() {
		if err := frames.Close(); err != nil {
			logging.Warn("Failed to remove temporary frames for %s: %v", videoPath, err)
		}
	}()

	sel, err := histogram.SelectFrame(frames)
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", filepath.Base(videoPath), err)
	}
	res.FrameIndex = sel.Index
	res.Score = sel.Score
	res.FramesScored = sel.Frames

	framePath, err := frames.Materialize(sel.Index)
	if err != nil {
		return nil, fmt.Errorf("selected frame %d: %w", sel.Index, err)
	}

	for _, spec := range specs {
		data, err := g.renderer.Render(framePath, spec)
		if err != nil {
			return nil, fmt.Errorf("render %s at %s: %w", filepath.Base(videoPath), spec.Size, err)
		}
		res.Thumbnails = append(res.Thumbnails, Thumbnail{Spec: spec, Data: data})
	}

	res.Duration = time.Since(start)
	logging.Debug("Run %s: %s frame %d/%d (rmse %.2f, %s) -> %d thumbnails in %v",
		res.RunID, filepath.Base(videoPath), sel.Index, sel.Frames, sel.Score, res.Orientation,
		len(res.Thumbnails), res.Duration)

	return res, nil
}

// IsSoft reports whether err means "no thumbnail" rather than a failure the
// caller must surface.
func IsSoft(err error) bool {
	return errors.Is(err, ErrDecoderUnavailable)
}
