package storage

import (
	"context"
	"errors"
	"path"
	"strings"

	"videothumbs/internal/thumbnail"
)

// ErrNotFound is returned by Delete when the object does not exist.
var ErrNotFound = errors.New("object not found")

// Store persists encoded thumbnails under slash-separated keys.
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Name() string
}

// ThumbnailKey names the thumbnail of videoName at size:
// <dir>/thumbnail/<base>.<w>x<h>.jpeg
func ThumbnailKey(videoName string, size thumbnail.Size) string {
	clean := strings.TrimPrefix(path.Clean("/"+filepathToSlash(videoName)), "/")
	dir, file := path.Split(clean)
	base := strings.TrimSuffix(file, path.Ext(file))
	return path.Join(dir, "thumbnail", base+"."+size.String()+".jpeg")
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
