package thumbnail

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// Renderer turns a frame file into encoded thumbnail bytes.
type Renderer interface {
	Render(framePath string, spec Spec) ([]byte, error)
	Name() string
}

// ImagingRenderer renders in pure Go.
type ImagingRenderer struct {
	Filter  imaging.ResampleFilter
	Quality int
}

// NewImagingRenderer creates a renderer using the named filter.
func NewImagingRenderer(filter string, quality int) (*ImagingRenderer, error) {
	f, err := ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	return &ImagingRenderer{Filter: f, Quality: quality}, nil
}

func (r *ImagingRenderer) Name() string {
	return "imaging"
}

func (r *ImagingRenderer) Render(framePath string, spec Spec) ([]byte, error) {
	img, err := imaging.Open(framePath)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	return Encode(Synthesize(img, spec, r.Filter), r.Quality)
}
