package histogram

import (
	"errors"
	"image"
	"image/color"
	"math"
)

// ErrNoFrames is returned when there is nothing to score.
var ErrNoFrames = errors.New("no usable frames")

// Mode is the normalized color mode a frame is measured in.
type Mode int

const (
	// Luminance measures single-channel frames: 256 bins.
	Luminance Mode = iota
	// RGB measures three channels: 768 bins, red then green then blue.
	RGB
)

// Bins returns the histogram length for m.
func (m Mode) Bins() int {
	if m == Luminance {
		return 256
	}
	return 3 * 256
}

func (m Mode) String() string {
	if m == Luminance {
		return "L"
	}
	return "RGB"
}

// ModeOf returns Luminance for 8-bit single-channel images and RGB for
// everything else, 16-bit gray included.
func ModeOf(img image.Image) Mode {
	if _, ok := img.(*image.Gray); ok || img.ColorModel() == color.GrayModel {
		return Luminance
	}
	return RGB
}

// Histogram is a per-bin pixel count.
type Histogram []uint64

// Compute counts the pixels of img in mode. Color images measured in
// Luminance are converted with the standard gray model; alpha is ignored.
func Compute(img image.Image, mode Mode) Histogram {
	h := make(Histogram, mode.Bins())
	b := img.Bounds()

	switch src := img.(type) {
	case *image.Gray:
		if mode == Luminance {
			for y := b.Min.Y; y < b.Max.Y; y++ {
				row := src.Pix[(y-b.Min.Y)*src.Stride : (y-b.Min.Y)*src.Stride+b.Dx()]
				for _, v := range row {
					h[v]++
				}
			}
			return h
		}
	case *image.YCbCr:
		if mode == RGB {
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					yy := src.Y[src.YOffset(x, y)]
					ci := src.COffset(x, y)
					r, g, bl := color.YCbCrToRGB(yy, src.Cb[ci], src.Cr[ci])
					h[r]++
					h[256+int(g)]++
					h[512+int(bl)]++
				}
			}
			return h
		}
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.At(x, y)
			if mode == Luminance {
				h[color.GrayModel.Convert(c).(color.Gray).Y]++
				continue
			}
			rgb := color.NRGBAModel.Convert(c).(color.NRGBA)
			h[rgb.R]++
			h[256+int(rgb.G)]++
			h[512+int(rgb.B)]++
		}
	}
	return h
}

// Average returns the per-bin arithmetic mean of hists. Bins are
// accumulated across the whole batch and divided once by its size.
func Average(hists []Histogram) ([]float64, error) {
	if len(hists) == 0 {
		return nil, ErrNoFrames
	}
	bins := len(hists[0])
	sums := make([]float64, bins)
	for _, h := range hists {
		if len(h) != bins {
			return nil, errors.New("histograms differ in length")
		}
		for b, v := range h {
			sums[b] += float64(v)
		}
	}

	n := float64(len(hists))
	for b := range sums {
		sums[b] /= n
	}
	return sums, nil
}

// Score is the root-mean-square deviation of h from avg. Lower means closer
// to the batch average.
func Score(h Histogram, avg []float64) float64 {
	if len(avg) == 0 {
		return 0
	}
	count := float64(len(avg))
	var sum float64
	for b, a := range avg {
		d := a - float64(h[b])
		sum += d * d / count
	}
	return math.Sqrt(sum)
}

// Selection is the outcome of scoring a batch.
type Selection struct {
	// Position is the 0-based position of the winner in the scored slice.
	Position int
	// Score is the winner's RMSE.
	Score float64
	// Scores holds every frame's RMSE in input order.
	Scores []float64
}

// Select picks the histogram closest to the batch average. Ties keep the
// earliest position.
func Select(hists []Histogram) (Selection, error) {
	avg, err := Average(hists)
	if err != nil {
		return Selection{}, err
	}

	sel := Selection{Position: -1, Scores: make([]float64, len(hists))}
	for i, h := range hists {
		s := Score(h, avg)
		sel.Scores[i] = s
		if sel.Position == -1 || s < sel.Score {
			sel.Position = i
			sel.Score = s
		}
	}
	return sel, nil
}
