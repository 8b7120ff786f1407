package mediatypes

import (
	"path/filepath"
	"strings"
)

// VideoExtensions maps file extensions to whether they are video formats the
// watcher hands to the decoder.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
}

// FrameFormats maps the frame formats the sampler can write to their MIME types.
var FrameFormats = map[string]string{
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// ThumbnailMimeType is the content type of every generated thumbnail.
const ThumbnailMimeType = "image/jpeg"

// IsVideo reports whether name has a video extension (case-insensitive).
func IsVideo(name string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsThumbnailDir reports whether a directory holds generated thumbnails.
// Walkers skip these so outputs written next to the media are never
// treated as input.
func IsThumbnailDir(name string) bool {
	return name == "thumbnail"
}

// ValidFrameFormat reports whether format is a supported frame extension.
func ValidFrameFormat(format string) bool {
	_, ok := FrameFormats[strings.ToLower(format)]
	return ok
}
