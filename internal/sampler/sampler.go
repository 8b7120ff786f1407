package sampler

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"videothumbs/internal/logging"
	"videothumbs/internal/orientation"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	// Frame format decoders
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ErrDecoderUnavailable is returned when the decoder could not run, exited
// with a nonzero status or timed out.
var ErrDecoderUnavailable = errors.New("frame decoder unavailable")

// Sampler extracts up to n still frames from a video with the orientation
// correction already applied.
type Sampler interface {
	Sample(ctx context.Context, videoPath string, n int, corr orientation.Correction) (*FrameSet, error)
}

// FrameSet is the on-disk output of one sampling run. Frame indexes are
// 1-based; indexes the decoder did not produce are simply absent.
// A FrameSet is read-only once returned and must be closed.
type FrameSet struct {
	dir        string
	prefix     string
	ext        string
	count      int
	correction orientation.Correction
	// applyOnLoad is set when the decoder did not bake the correction in.
	applyOnLoad bool
}

// NewFrameSet describes frames named <prefix>.<index>.<ext> inside dir.
func NewFrameSet(dir, prefix, ext string, count int) *FrameSet {
	return &FrameSet{dir: dir, prefix: prefix, ext: strings.TrimPrefix(ext, "."), count: count}
}

// Pattern returns the decoder output pattern with a %d frame placeholder.
func (f *FrameSet) Pattern() string {
	return filepath.Join(f.dir, f.prefix+".%d."+f.ext)
}

// Count returns the number of requested frames.
func (f *FrameSet) Count() int {
	return f.count
}

// Path returns the file for frame index i and whether it exists.
func (f *FrameSet) Path(i int) (string, bool) {
	if i < 1 || i > f.count {
		return "", false
	}
	p := filepath.Join(f.dir, f.prefix+"."+strconv.Itoa(i)+"."+f.ext)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return p, false
	}
	return p, true
}

// Available returns the indexes of the frames that exist, in order.
func (f *FrameSet) Available() []int {
	var indexes []int
	for i := 1; i <= f.count; i++ {
		if _, ok := f.Path(i); ok {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

// Load decodes frame i.
func (f *FrameSet) Load(i int) (image.Image, error) {
	p, ok := f.Path(i)
	if !ok {
		return nil, fmt.Errorf("frame %d: %w", i, os.ErrNotExist)
	}
	img, err := imaging.Open(p)
	if err != nil {
		return nil, fmt.Errorf("decode frame %d: %w", i, err)
	}
	if f.applyOnLoad {
		img = f.correction.Apply(img)
	}
	return img, nil
}

// Close removes every artifact written under the set's prefix, including
// frames beyond the requested count. It is safe to call more than once.
func (f *FrameSet) Close() error {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("list frames: %w", err)
	}

	var errs []error
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), f.prefix+".") {
			continue
		}
		if err := os.Remove(filepath.Join(f.dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		logging.Debug("Removed %d temporary frames for %s", removed, f.prefix)
	}
	return errors.Join(errs...)
}

// framePrefix derives a collision-resistant artifact prefix from the video
// name, the current time and a random id.
func framePrefix(videoPath string, now time.Time) string {
	value := fmt.Sprintf("%s%d%s", filepath.Base(videoPath), now.UnixNano(), uuid.NewString())
	return fmt.Sprintf("%x", md5.Sum([]byte(value)))
}

// Materialize returns a file holding frame i exactly as Load sees it. When
// the correction is applied on load, the corrected frame is written once as
// PNG under the set's prefix so Close removes it too.
func (f *FrameSet) Materialize(i int) (string, error) {
	p, ok := f.Path(i)
	if !ok {
		return "", fmt.Errorf("frame %d: %w", i, os.ErrNotExist)
	}
	if !f.applyOnLoad || f.correction == orientation.None {
		return p, nil
	}

	img, err := f.Load(i)
	if err != nil {
		return "", err
	}
	out := filepath.Join(f.dir, f.prefix+".corrected."+strconv.Itoa(i)+".png")
	if err := imaging.Save(img, out); err != nil {
		return "", fmt.Errorf("save corrected frame %d: %w", i, err)
	}
	return out, nil
}
