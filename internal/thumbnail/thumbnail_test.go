package thumbnail

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    Size
		wantErr bool
	}{
		{"100x100", Size{100, 100}, false},
		{"160X90", Size{160, 90}, false},
		{" 64x48 ", Size{64, 48}, false},
		{"100", Size{}, true},
		{"0x10", Size{}, true},
		{"-5x10", Size{}, true},
		{"ax10", Size{}, true},
		{"10x10x10", Size{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCropBox(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want image.Rectangle
	}{
		{"landscape", 400, 300, image.Rect(50, 0, 350, 300)},
		{"portrait", 300, 400, image.Rect(0, 50, 300, 350)},
		{"square", 200, 200, image.Rect(0, 0, 200, 200)},
		// floor on the offset keeps the extra pixel on the far edge
		{"odd excess", 401, 300, image.Rect(50, 0, 351, 300)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CropBox(tt.w, tt.h); got != tt.want {
				t.Errorf("CropBox(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
			}
		})
	}
}

// halves returns a w x h image whose left half is red and right half blue.
func halves(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, color.NRGBA{255, 0, 0, 255})
			} else {
				img.Set(x, y, color.NRGBA{0, 0, 255, 255})
			}
		}
	}
	return img
}

func TestSynthesizeSquareCrop(t *testing.T) {
	src := imaging.New(400, 300, color.Black)
	// mark the region the crop must discard
	src = imaging.Paste(src, imaging.New(50, 300, color.White), image.Pt(0, 0))
	src = imaging.Paste(src, imaging.New(50, 300, color.White), image.Pt(350, 0))

	out := Synthesize(src, Spec{Size: Size{100, 100}, Crop: true}, imaging.Lanczos)

	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 100 {
		t.Fatalf("size = %v, want 100x100", out.Bounds().Size())
	}
	for _, p := range []image.Point{{0, 0}, {99, 50}, {50, 99}} {
		r, _, _, _ := out.At(p.X, p.Y).RGBA()
		if r > 0x1000 {
			t.Errorf("pixel %v is not black; cropped region leaked in", p)
		}
	}
}

func TestSynthesizeNoCropForNonSquare(t *testing.T) {
	src := halves(400, 300)
	out := Synthesize(src, Spec{Size: Size{160, 90}, Crop: true}, imaging.Lanczos)

	// 400x300 fitted into 160x90 keeps 4:3
	if out.Bounds().Dx() != 120 || out.Bounds().Dy() != 90 {
		t.Errorf("size = %v, want 120x90", out.Bounds().Size())
	}
}

func TestSynthesizeSquareWithoutCropFits(t *testing.T) {
	out := Synthesize(halves(400, 300), Spec{Size: Size{100, 100}}, imaging.Lanczos)
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 75 {
		t.Errorf("size = %v, want 100x75", out.Bounds().Size())
	}
}

func TestSynthesizeDoesNotUpscale(t *testing.T) {
	out := Synthesize(halves(40, 30), Spec{Size: Size{160, 90}}, imaging.Lanczos)
	if out.Bounds().Dx() != 40 || out.Bounds().Dy() != 30 {
		t.Errorf("size = %v, want 40x30", out.Bounds().Size())
	}
}

func TestSynthesizeOffsetBounds(t *testing.T) {
	base := halves(500, 300)
	sub := base.SubImage(image.Rect(100, 0, 500, 300))

	out := Synthesize(sub, Spec{Size: Size{30, 30}, Crop: true}, imaging.Lanczos)
	if out.Bounds().Dx() != 30 || out.Bounds().Dy() != 30 {
		t.Errorf("size = %v, want 30x30", out.Bounds().Size())
	}
}

func TestParseFilter(t *testing.T) {
	for _, name := range []string{"", "lanczos", "ANTIALIAS", "catmullrom", "bicubic", "mitchell", "linear", "box", "nearest"} {
		if _, err := ParseFilter(name); err != nil {
			t.Errorf("ParseFilter(%q) error: %v", name, err)
		}
	}
	if _, err := ParseFilter("sinc"); err == nil {
		t.Error("ParseFilter(sinc) should fail")
	}
}

func TestEncode(t *testing.T) {
	data, err := Encode(halves(20, 10), 0)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 10 {
		t.Errorf("decoded size = %v", img.Bounds().Size())
	}
}

func TestImagingRenderer(t *testing.T) {
	dir := t.TempDir()
	frame := filepath.Join(dir, "frame.jpg")
	if err := imaging.Save(halves(400, 300), frame); err != nil {
		t.Fatalf("save frame: %v", err)
	}

	r, err := NewImagingRenderer("lanczos", 85)
	if err != nil {
		t.Fatalf("NewImagingRenderer() error: %v", err)
	}

	tests := []struct {
		spec Spec
		w, h int
	}{
		{Spec{Size: Size{100, 100}, Crop: true}, 100, 100},
		{Spec{Size: Size{160, 90}, Crop: true}, 120, 90},
	}
	for _, tt := range tests {
		t.Run(tt.spec.Size.String(), func(t *testing.T) {
			data, err := r.Render(frame, tt.spec)
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("DecodeConfig() error: %v", err)
			}
			if cfg.Width != tt.w || cfg.Height != tt.h {
				t.Errorf("rendered %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.w, tt.h)
			}
		})
	}

	if _, err := r.Render(filepath.Join(dir, "missing.jpg"), tests[0].spec); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Render(missing) error = %v, want ErrNotExist", err)
	}
}

func TestNewImagingRendererBadFilter(t *testing.T) {
	if _, err := NewImagingRenderer("sinc", 80); err == nil {
		t.Error("expected an error for an unknown filter")
	}
}
