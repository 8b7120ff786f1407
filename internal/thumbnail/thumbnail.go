package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrEncoding wraps failures to produce the final image bytes.
var ErrEncoding = errors.New("thumbnail encoding failed")

// DefaultJPEGQuality matches the usual library default for thumbnails.
const DefaultJPEGQuality = 75

// Size is a thumbnail bounding box in pixels.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Square reports whether the box has equal sides.
func (s Size) Square() bool {
	return s.Width == s.Height
}

// ParseSize parses "WxH".
func ParseSize(v string) (Size, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(v)), "x")
	if len(parts) != 2 {
		return Size{}, fmt.Errorf("invalid size %q: want WIDTHxHEIGHT", v)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return Size{}, fmt.Errorf("invalid width in %q: %w", v, err)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return Size{}, fmt.Errorf("invalid height in %q: %w", v, err)
	}
	if w <= 0 || h <= 0 {
		return Size{}, fmt.Errorf("invalid size %q: dimensions must be positive", v)
	}
	return Size{Width: w, Height: h}, nil
}

// UnmarshalText lets Size be used directly in env-parsed config.
func (s *Size) UnmarshalText(text []byte) error {
	parsed, err := ParseSize(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Spec drives synthesis of one thumbnail.
type Spec struct {
	Size Size
	// Crop enables the center square crop for square targets.
	Crop bool
}

// CropsToSquare reports whether the frame is cropped before resizing.
func (s Spec) CropsToSquare() bool {
	return s.Crop && s.Size.Square()
}

// CropBox returns the centered region of a w x h frame used for square
// targets. Offsets are floored, so an odd excess leaves the far edge one
// pixel wider.
func CropBox(w, h int) image.Rectangle {
	m := min(w, h)
	dx := (w - m) / 2
	dy := (h - m) / 2
	return image.Rect(dx, dy, w-dx, h-dy)
}

// ParseFilter maps a filter name to an imaging resample filter.
func ParseFilter(name string) (imaging.ResampleFilter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lanczos", "antialias":
		return imaging.Lanczos, nil
	case "catmullrom", "bicubic":
		return imaging.CatmullRom, nil
	case "mitchell":
		return imaging.MitchellNetravali, nil
	case "linear", "bilinear":
		return imaging.Linear, nil
	case "box":
		return imaging.Box, nil
	case "nearest":
		return imaging.NearestNeighbor, nil
	default:
		return imaging.ResampleFilter{}, fmt.Errorf("unknown resample filter %q", name)
	}
}

// Synthesize crops (for square targets with Crop set) and then fits img
// into spec.Size, preserving aspect ratio. Images already inside the box
// are not enlarged.
func Synthesize(img image.Image, spec Spec, filter imaging.ResampleFilter) image.Image {
	if spec.CropsToSquare() {
		b := img.Bounds()
		box := CropBox(b.Dx(), b.Dy()).Add(b.Min)
		img = imaging.Crop(img, box)
	}
	return imaging.Fit(img, spec.Size.Width, spec.Size.Height, filter)
}

// Encode writes img as JPEG.
func Encode(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return buf.Bytes(), nil
}
