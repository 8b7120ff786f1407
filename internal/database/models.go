package database

import "time"

// VideoStatus is the outcome of the last generation run for a video.
type VideoStatus string

const (
	StatusDone        VideoStatus = "done"
	StatusNoThumbnail VideoStatus = "no_thumbnail"
	StatusFailed      VideoStatus = "failed"
)

// Video is the processing record of one source video.
type Video struct {
	Path         string      `json:"path"`
	ModTime      time.Time   `json:"modTime"`
	Status       VideoStatus `json:"status"`
	FrameIndex   int         `json:"frameIndex"`
	FramesScored int         `json:"framesScored"`
	Orientation  string      `json:"orientation"`
	Error        string      `json:"error,omitempty"`
	RunID        string      `json:"runId,omitempty"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Thumbnail locates one stored size of a video's thumbnail.
type Thumbnail struct {
	VideoPath  string    `json:"videoPath"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	StorageKey string    `json:"storageKey"`
	Bytes      int       `json:"bytes"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Run is everything recorded after one generation attempt.
type Run struct {
	Video      Video
	Thumbnails []Thumbnail
}
