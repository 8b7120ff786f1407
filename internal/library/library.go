package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"videothumbs/internal/database"
	"videothumbs/internal/filesystem"
	"videothumbs/internal/logging"
	"videothumbs/internal/metrics"
	"videothumbs/internal/storage"
	"videothumbs/internal/thumbnail"
	"videothumbs/internal/videothumb"
)

// Generator renders every requested size of a video's thumbnail.
type Generator interface {
	GenerateAll(ctx context.Context, videoPath string, specs []thumbnail.Spec) (*videothumb.Result, error)
}

// Index records generation runs. *database.Database satisfies it.
type Index interface {
	RecordRun(ctx context.Context, run database.Run) error
	DeleteVideo(ctx context.Context, path string) ([]string, error)
}

// Service ties generation, storage and the index together for the
// configured set of sizes.
type Service struct {
	gen      Generator
	store    storage.Store
	index    Index
	specs    []thumbnail.Spec
	mediaDir string
	tempDir  string
}

// Options configures a Service.
type Options struct {
	// Specs is the set of sizes produced for each video.
	Specs []thumbnail.Spec
	// MediaDir is the root video names are made relative to. Empty means
	// names are used as given.
	MediaDir string
	// TempDir receives spooled uploads.
	TempDir string
	// Index is optional.
	Index Index
}

// New returns a Service. At least one spec is required.
func New(gen Generator, store storage.Store, opts Options) (*Service, error) {
	if len(opts.Specs) == 0 {
		return nil, errors.New("library: no thumbnail sizes configured")
	}
	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Service{
		gen:      gen,
		store:    store,
		index:    opts.Index,
		specs:    opts.Specs,
		mediaDir: opts.MediaDir,
		tempDir:  tempDir,
	}, nil
}

// Specs returns the configured sizes.
func (s *Service) Specs() []thumbnail.Spec {
	return s.specs
}

// Name returns the storage name of videoPath: relative to the media
// directory when it lies beneath it, otherwise unchanged.
func (s *Service) Name(videoPath string) string {
	if s.mediaDir == "" {
		return filepath.ToSlash(videoPath)
	}
	rel, err := filepath.Rel(s.mediaDir, videoPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(videoPath)
	}
	return filepath.ToSlash(rel)
}

// Save generates and stores every configured size for a local video.
// When the decoder is unavailable nothing is stored and no error is
// returned.
func (s *Service) Save(ctx context.Context, videoPath string) ([]database.Thumbnail, error) {
	info, err := filesystem.StatWithRetry(videoPath, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("video not accessible: %w", err)
	}
	return s.save(ctx, videoPath, s.Name(videoPath), info.ModTime())
}

// SaveReader spools r into the temp directory and processes it as name.
// The spool file is removed before returning.
func (s *Service) SaveReader(ctx context.Context, name string, r io.Reader) ([]database.Thumbnail, error) {
	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	spool, err := os.CreateTemp(s.tempDir, "spool-*"+filepath.Ext(name))
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	spoolPath := spool.Name()
	defer func() {
		if err := filesystem.RemoveWithRetry(spoolPath, filesystem.DefaultRetryConfig()); err != nil && !os.IsNotExist(err) {
			logging.Warn("Failed to remove spool file %s: %v", spoolPath, err)
		}
	}()

	n, err := io.Copy(spool, r)
	if closeErr := spool.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("spool %s: %w", name, err)
	}
	logging.Debug("Spooled %s (%d bytes) to %s", name, n, spoolPath)

	return s.save(ctx, spoolPath, filepath.ToSlash(name), time.Now())
}

func (s *Service) save(ctx context.Context, localPath, name string, modTime time.Time) ([]database.Thumbnail, error) {
	start := time.Now()
	res, err := s.gen.GenerateAll(ctx, localPath, s.specs)
	metrics.ObserveGeneration(res, err, time.Since(start))

	run := database.Run{Video: database.Video{Path: name, ModTime: modTime}}

	if err != nil {
		if videothumb.IsSoft(err) {
			logging.Debug("No thumbnail for %s: %v", name, err)
			run.Video.Status = database.StatusNoThumbnail
			run.Video.Error = err.Error()
			s.record(ctx, run)
			return nil, nil
		}
		run.Video.Status = database.StatusFailed
		run.Video.Error = err.Error()
		s.record(ctx, run)
		return nil, err
	}

	run.Video.Status = database.StatusDone
	run.Video.FrameIndex = res.FrameIndex
	run.Video.FramesScored = res.FramesScored
	run.Video.Orientation = res.Orientation.String()
	run.Video.RunID = res.RunID

	for _, th := range res.Thumbnails {
		key := storage.ThumbnailKey(name, th.Spec.Size)
		err := s.store.Save(ctx, key, th.Data)
		metrics.ObserveStorage(s.store.Name(), "save", err)
		if err != nil {
			run.Video.Status = database.StatusFailed
			run.Video.Error = err.Error()
			s.record(ctx, run)
			return nil, fmt.Errorf("store %s: %w", key, err)
		}
		run.Thumbnails = append(run.Thumbnails, database.Thumbnail{
			VideoPath:  name,
			Width:      th.Spec.Size.Width,
			Height:     th.Spec.Size.Height,
			StorageKey: key,
			Bytes:      len(th.Data),
			CreatedAt:  time.Now(),
		})
	}

	s.record(ctx, run)
	logging.Info("Stored %d thumbnails for %s (frame %d, %s)", len(run.Thumbnails), name, res.FrameIndex, res.Orientation)
	return run.Thumbnails, nil
}

func (s *Service) record(ctx context.Context, run database.Run) {
	if s.index == nil {
		return
	}
	if err := s.index.RecordRun(ctx, run); err != nil {
		logging.Warn("Failed to record run for %s: %v", run.Video.Path, err)
	}
}

// Delete removes every stored size of the video named videoName. Failures
// on individual sizes are logged and otherwise ignored. It returns the
// number of objects removed.
func (s *Service) Delete(ctx context.Context, videoName string) int {
	name := filepath.ToSlash(videoName)

	keys := make(map[string]struct{})
	for _, spec := range s.specs {
		keys[storage.ThumbnailKey(name, spec.Size)] = struct{}{}
	}
	if s.index != nil {
		recorded, err := s.index.DeleteVideo(ctx, name)
		if err != nil {
			logging.Warn("Failed to remove index entry for %s: %v", name, err)
		}
		for _, k := range recorded {
			keys[k] = struct{}{}
		}
	}

	removed := 0
	for key := range keys {
		err := s.store.Delete(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		metrics.ObserveStorage(s.store.Name(), "delete", err)
		if err != nil {
			logging.Debug("Ignoring delete failure for %s: %v", key, err)
			continue
		}
		removed++
	}

	logging.Debug("Deleted %d thumbnails for %s", removed, name)
	return removed
}
