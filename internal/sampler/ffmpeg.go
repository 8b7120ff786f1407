package sampler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"videothumbs/internal/logging"
	"videothumbs/internal/orientation"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegSampler writes the first n frames of a video into TempDir.
type FFmpegSampler struct {
	// Binary is the ffmpeg executable. Defaults to "ffmpeg".
	Binary string
	// TempDir receives the frame files.
	TempDir string
	// Format is the frame file extension: jpg, png or webp.
	Format string
	// Timeout bounds one decode run. Zero means no limit beyond ctx.
	Timeout time.Duration
	// CorrectInProcess applies the orientation correction while loading
	// frames instead of through decoder filters.
	CorrectInProcess bool
}

// Sample runs the decoder. Any failure to run it maps to
// ErrDecoderUnavailable; the returned FrameSet may still hold fewer than n
// frames.
func (s *FFmpegSampler) Sample(ctx context.Context, videoPath string, n int, corr orientation.Correction) (*FrameSet, error) {
	if n < 1 {
		return nil, fmt.Errorf("sample count must be positive, got %d", n)
	}
	if err := os.MkdirAll(s.TempDir, 0755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	format := s.Format
	if format == "" {
		format = "jpg"
	}
	frames := NewFrameSet(s.TempDir, framePrefix(videoPath, time.Now()), format, n)
	frames.correction = corr
	frames.applyOnLoad = s.CorrectInProcess

	args := s.args(videoPath, frames.Pattern(), n, corr)
	binary := s.Binary
	if binary == "" {
		binary = "ffmpeg"
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	logging.Debug("Sampling %d frames: %s %s", n, binary, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if closeErr := frames.Close(); closeErr != nil {
			logging.Warn("Failed to clean frames after decoder error: %v", closeErr)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 512 {
			msg = msg[len(msg)-512:]
		}
		return nil, fmt.Errorf("%w: %v: %s", ErrDecoderUnavailable, err, msg)
	}

	logging.Debug("Sampled %s in %v", videoPath, time.Since(start))
	return frames, nil
}

// args builds the decoder arguments through ffmpeg-go so filter escaping
// matches the library's.
func (s *FFmpegSampler) args(videoPath, pattern string, n int, corr orientation.Correction) []string {
	stream := ffmpeg.Input(videoPath, ffmpeg.KwArgs{"noautorotate": ""})
	if !s.CorrectInProcess {
		stream = corr.FilterChain(stream)
	}
	// GetArgs, not Compile: Compile prints every command through the
	// standard log package.
	return stream.
		Output(pattern, ffmpeg.KwArgs{"vframes": n}).
		OverWriteOutput().
		GetArgs()
}

// IsDecoderUnavailable reports whether err is a soft decoder failure.
func IsDecoderUnavailable(err error) bool {
	return errors.Is(err, ErrDecoderUnavailable)
}
