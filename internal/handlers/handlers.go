package handlers

import (
	"context"
	"io"
	"path"
	"path/filepath"

	"videothumbs/internal/database"
	"videothumbs/internal/indexer"
)

// Library generates, stores and deletes thumbnail sets.
// *library.Service satisfies it.
type Library interface {
	Save(ctx context.Context, videoPath string) ([]database.Thumbnail, error)
	SaveReader(ctx context.Context, name string, r io.Reader) ([]database.Thumbnail, error)
	Delete(ctx context.Context, videoName string) int
}

// Catalog answers queries about stored thumbnails.
// *database.Database satisfies it.
type Catalog interface {
	ListThumbnails(ctx context.Context, videoPath string) ([]database.Thumbnail, error)
	GetVideo(ctx context.Context, path string) (*database.Video, error)
	Ping(ctx context.Context) error
}

// Watcher is the directory watcher. *indexer.Indexer satisfies it.
type Watcher interface {
	GetHealthStatus() indexer.HealthStatus
	TriggerScan(ctx context.Context)
}

// Handlers serves the thumbnail API.
type Handlers struct {
	lib      Library
	catalog  Catalog
	watcher  Watcher
	mediaDir string

	// scanCtx outlives individual requests so triggered scans are not
	// cancelled when the request returns.
	scanCtx context.Context
}

// New creates the handlers. watcher may be nil.
func New(ctx context.Context, lib Library, catalog Catalog, watcher Watcher, mediaDir string) *Handlers {
	return &Handlers{
		lib:      lib,
		catalog:  catalog,
		watcher:  watcher,
		mediaDir: mediaDir,
		scanCtx:  ctx,
	}
}

// videoName normalizes a request path into a slash-separated name relative
// to the media directory. ".." segments cannot climb above the root.
func videoName(raw string) string {
	clean := path.Clean("/" + raw)
	if clean == "/" {
		return ""
	}
	return clean[1:]
}

// localPath maps a video name onto the media directory.
func (h *Handlers) localPath(name string) string {
	return filepath.Join(h.mediaDir, filepath.FromSlash(name))
}
