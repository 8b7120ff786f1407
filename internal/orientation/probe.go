package orientation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"videothumbs/internal/logging"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Prober returns the raw JSON document describing the primary video stream.
type Prober interface {
	Probe(ctx context.Context, videoPath string) ([]byte, error)
}

// FFprobe queries the first video stream through ffprobe.
type FFprobe struct {
	// Timeout bounds a single probe. Zero means the context deadline only.
	Timeout time.Duration
}

// Probe runs ffprobe restricted to the rotate tag and the display matrix
// side data of stream v:0.
func (p FFprobe) Probe(ctx context.Context, videoPath string) ([]byte, error) {
	timeout := p.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout == 0 || remaining < timeout {
			timeout = remaining
		}
	}
	if timeout < 0 {
		return nil, ctx.Err()
	}

	out, err := ffmpeg.ProbeWithTimeout(videoPath, timeout, ffmpeg.KwArgs{
		"v":              "error",
		"select_streams": "v:0",
		"show_entries":   "stream_tags=rotate:stream_side_data=rotation",
	})
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", videoPath, err)
	}
	return []byte(out), nil
}

type probeDoc struct {
	Streams []struct {
		Tags struct {
			Rotate string `json:"rotate"`
		} `json:"tags"`
		SideDataList []struct {
			Rotation *json.Number `json:"rotation"`
		} `json:"side_data_list"`
	} `json:"streams"`
}

// ParseProbe extracts the rotation hint from an ffprobe JSON document. The
// rotate tag wins; otherwise the display matrix rotation is used with its
// sign flipped (the matrix is counter-clockwise). ok is false when neither
// is present.
func ParseProbe(data []byte) (degrees int, ok bool, err error) {
	var doc probeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, false, fmt.Errorf("decode probe output: %w", err)
	}
	if len(doc.Streams) == 0 {
		return 0, false, nil
	}

	stream := doc.Streams[0]
	if tag := strings.TrimSpace(stream.Tags.Rotate); tag != "" {
		v, err := strconv.Atoi(tag)
		if err != nil {
			return 0, false, fmt.Errorf("parse rotate tag %q: %w", tag, err)
		}
		return v, true, nil
	}

	for _, sd := range stream.SideDataList {
		if sd.Rotation == nil {
			continue
		}
		f, err := sd.Rotation.Float64()
		if err != nil {
			return 0, false, fmt.Errorf("parse display matrix rotation %q: %w", sd.Rotation.String(), err)
		}
		return -int(f), true, nil
	}

	return 0, false, nil
}

// Resolver turns probe output into a Correction. It never fails: any probe
// or parse error degrades to None.
type Resolver struct {
	prober Prober
}

// NewResolver creates a Resolver around prober.
func NewResolver(prober Prober) *Resolver {
	return &Resolver{prober: prober}
}

// Resolve returns the correction for videoPath.
func (r *Resolver) Resolve(ctx context.Context, videoPath string) Correction {
	data, err := r.prober.Probe(ctx, videoPath)
	if err != nil {
		logging.Debug("Orientation metadata unavailable for %s: %v", videoPath, err)
		return None
	}

	degrees, ok, err := ParseProbe(data)
	if err != nil {
		logging.Debug("Orientation metadata unreadable for %s: %v", videoPath, err)
		return None
	}
	if !ok {
		return None
	}

	c := FromRotation(degrees)
	logging.Debug("Rotation hint %d for %s -> %s", degrees, videoPath, c)
	return c
}
