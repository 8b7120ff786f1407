package histogram

import (
	"fmt"
	"image"

	"videothumbs/internal/logging"
)

// FrameSource yields decoded frames by 1-based index.
type FrameSource interface {
	Available() []int
	Load(index int) (image.Image, error)
}

// Result identifies the most representative frame of a source.
type Result struct {
	// Index is the 1-based frame index.
	Index int
	Score float64
	Mode  Mode
	// Frames is the number of frames that were scored.
	Frames int
}

// SelectFrame scores every loadable frame of src and returns the one
// closest to the average. Frames that fail to decode are skipped like
// missing ones. Only histograms are kept in memory, not pixels.
func SelectFrame(src FrameSource) (Result, error) {
	var (
		hists []Histogram
		order []int
		mode  = Luminance
	)

	for _, i := range src.Available() {
		img, err := src.Load(i)
		if err != nil {
			logging.Debug("Skipping frame %d: %v", i, err)
			continue
		}
		m := ModeOf(img)
		if m == RGB {
			mode = RGB
		}
		hists = append(hists, Compute(img, m))
		order = append(order, i)
	}

	if len(hists) == 0 {
		return Result{}, ErrNoFrames
	}

	// A single color frame puts the whole batch in RGB. Gray frames convert
	// to RGB with equal channels, so their luminance counts are repeated.
	if mode == RGB {
		for i, h := range hists {
			if len(h) == Luminance.Bins() {
				hists[i] = expandGray(h)
			}
		}
	}

	sel, err := Select(hists)
	if err != nil {
		return Result{}, fmt.Errorf("select frame: %w", err)
	}

	return Result{
		Index:  order[sel.Position],
		Score:  sel.Score,
		Mode:   mode,
		Frames: len(hists),
	}, nil
}

func expandGray(h Histogram) Histogram {
	out := make(Histogram, 0, RGB.Bins())
	for c := 0; c < 3; c++ {
		out = append(out, h...)
	}
	return out
}
