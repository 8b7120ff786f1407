package handlers

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"videothumbs/internal/database"
	"videothumbs/internal/logging"
	"videothumbs/internal/mediatypes"
	"videothumbs/internal/videothumb"

	"github.com/gorilla/mux"
)

// maxUploadBytes bounds a video posted in the request body.
const maxUploadBytes = 4 << 30

// ThumbnailsResponse lists the stored thumbnails of one or all videos.
type ThumbnailsResponse struct {
	Video      *database.Video      `json:"video,omitempty"`
	Status     string               `json:"status,omitempty"`
	Thumbnails []database.Thumbnail `json:"thumbnails"`
}

// ListThumbnails returns every stored thumbnail, or those of one video when
// the "video" query parameter is set.
func (h *Handlers) ListThumbnails(w http.ResponseWriter, r *http.Request) {
	name := videoName(r.URL.Query().Get("video"))

	thumbs, err := h.catalog.ListThumbnails(r.Context(), name)
	if err != nil {
		logging.Error("Failed to list thumbnails: %v", err)
		writeJSONError(w, "failed to list thumbnails", http.StatusInternalServerError)
		return
	}
	if thumbs == nil {
		thumbs = []database.Thumbnail{}
	}
	writeJSONStatusCode(w, http.StatusOK, ThumbnailsResponse{Thumbnails: thumbs})
}

// GetVideoThumbnails returns a video's processing record and its stored
// thumbnails.
func (h *Handlers) GetVideoThumbnails(w http.ResponseWriter, r *http.Request) {
	name := videoName(mux.Vars(r)["path"])
	if name == "" {
		writeJSONError(w, "video path required", http.StatusBadRequest)
		return
	}

	video, err := h.catalog.GetVideo(r.Context(), name)
	if err != nil {
		logging.Error("Failed to look up %s: %v", name, err)
		writeJSONError(w, "failed to look up video", http.StatusInternalServerError)
		return
	}
	if video == nil {
		writeJSONError(w, "video not processed", http.StatusNotFound)
		return
	}

	thumbs, err := h.catalog.ListThumbnails(r.Context(), name)
	if err != nil {
		logging.Error("Failed to list thumbnails for %s: %v", name, err)
		writeJSONError(w, "failed to list thumbnails", http.StatusInternalServerError)
		return
	}
	if thumbs == nil {
		thumbs = []database.Thumbnail{}
	}
	writeJSONStatusCode(w, http.StatusOK, ThumbnailsResponse{
		Video:      video,
		Status:     string(video.Status),
		Thumbnails: thumbs,
	})
}

// GenerateThumbnails generates the configured thumbnail set for a video.
// With an empty body the video is read from the media directory; otherwise
// the body is the video content and the path only names it.
func (h *Handlers) GenerateThumbnails(w http.ResponseWriter, r *http.Request) {
	name := videoName(mux.Vars(r)["path"])
	if name == "" {
		writeJSONError(w, "video path required", http.StatusBadRequest)
		return
	}
	if !mediatypes.IsVideo(name) {
		writeJSONError(w, "not a supported video type", http.StatusBadRequest)
		return
	}

	var (
		thumbs []database.Thumbnail
		err    error
	)
	if hasBody(r) {
		body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
		thumbs, err = h.lib.SaveReader(r.Context(), name, body)
	} else {
		thumbs, err = h.lib.Save(r.Context(), h.localPath(name))
	}

	if err != nil {
		code, msg := generationError(err)
		if code == http.StatusInternalServerError {
			logging.Error("Thumbnail generation failed for %s: %v", name, err)
		}
		writeJSONError(w, msg, code)
		return
	}

	status := string(database.StatusDone)
	if len(thumbs) == 0 {
		status = string(database.StatusNoThumbnail)
		thumbs = []database.Thumbnail{}
	}
	writeJSONStatusCode(w, http.StatusOK, ThumbnailsResponse{Status: status, Thumbnails: thumbs})
}

// DeleteThumbnails removes every stored size of a video.
func (h *Handlers) DeleteThumbnails(w http.ResponseWriter, r *http.Request) {
	name := videoName(mux.Vars(r)["path"])
	if name == "" {
		writeJSONError(w, "video path required", http.StatusBadRequest)
		return
	}

	removed := h.lib.Delete(r.Context(), name)
	writeJSONStatusCode(w, http.StatusOK, map[string]interface{}{
		"status":  "deleted",
		"removed": removed,
	})
}

func hasBody(r *http.Request) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return false
	}
	if r.ContentLength > 0 {
		return true
	}
	// chunked uploads report -1
	return r.ContentLength < 0 && !strings.EqualFold(r.Header.Get("Content-Type"), "application/json")
}

func generationError(err error) (int, string) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound, "video not found"
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, "video too large"
	case errors.Is(err, videothumb.ErrNoUsableFrames):
		return http.StatusUnprocessableEntity, "no usable frames in video"
	case errors.Is(err, videothumb.ErrEncoding):
		return http.StatusInternalServerError, "thumbnail encoding failed"
	default:
		return http.StatusInternalServerError, "thumbnail generation failed"
	}
}
