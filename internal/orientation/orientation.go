package orientation

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Correction is the geometric transform that compensates for a recording
// device's rotation metadata. Rotations are clockwise.
type Correction int

const (
	None Correction = iota
	Rotate90
	Rotate180
	Rotate270
)

func (c Correction) String() string {
	switch c {
	case None:
		return "none"
	case Rotate90:
		return "rotate90"
	case Rotate180:
		return "rotate180"
	case Rotate270:
		return "rotate270"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// FromRotation maps a rotation hint in degrees to a Correction. Hints are
// wrapped into [0, 360) and rounded to the nearest quarter turn, so 89 and 91
// both land on Rotate90 and 359 wraps back to None.
func FromRotation(degrees int) Correction {
	normalized := ((degrees % 360) + 360) % 360
	switch (normalized + 45) / 90 {
	case 1:
		return Rotate90
	case 2:
		return Rotate180
	case 3:
		return Rotate270
	default:
		return None
	}
}

// FilterChain appends the ffmpeg filters realizing c to stream.
// Rotate180 is expressed as vflip+hflip since transpose has no half-turn mode.
func (c Correction) FilterChain(stream *ffmpeg.Stream) *ffmpeg.Stream {
	switch c {
	case Rotate90:
		return stream.Filter("transpose", ffmpeg.Args{"1"})
	case Rotate180:
		return stream.Filter("vflip", ffmpeg.Args{}).Filter("hflip", ffmpeg.Args{})
	case Rotate270:
		return stream.Filter("transpose", ffmpeg.Args{"2"})
	default:
		return stream
	}
}

// Apply performs the same correction in process. The result is
// pixel-identical to the decoder's filter chain.
func (c Correction) Apply(img image.Image) image.Image {
	switch c {
	case Rotate90:
		// imaging rotates counter-clockwise
		return imaging.Rotate270(img)
	case Rotate180:
		return imaging.FlipH(imaging.FlipV(img))
	case Rotate270:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
