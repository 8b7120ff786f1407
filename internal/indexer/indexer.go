package indexer

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"videothumbs/internal/database"
	"videothumbs/internal/logging"
	"videothumbs/internal/mediatypes"
	"videothumbs/internal/metrics"
	"videothumbs/internal/workers"
)

const (
	// Default interval between scans of the media directory
	defaultScanInterval = 5 * time.Minute

	// Upper bound on concurrent generations; each one runs a decoder process
	maxWorkers = 8
)

// Processor generates and stores the thumbnails of one video.
// *library.Service satisfies it.
type Processor interface {
	Save(ctx context.Context, videoPath string) ([]database.Thumbnail, error)
	Name(videoPath string) string
}

// Lookup reports what is already known about a video. *database.Database
// satisfies it.
type Lookup interface {
	GetVideo(ctx context.Context, path string) (*database.Video, error)
}

// Throttle blocks new work under memory pressure. *memory.Monitor
// satisfies it.
type Throttle interface {
	WaitIfPaused(ctx context.Context) bool
}

// Indexer watches the media directory and generates thumbnails for videos
// that are new or changed since their last run.
type Indexer struct {
	proc         Processor
	lookup       Lookup
	mediaDir     string
	scanInterval time.Duration
	numWorkers   int
	throttle     Throttle

	stopChan chan struct{}
	stopOnce sync.Once
	cancel   context.CancelFunc

	scanMu       sync.Mutex
	isScanning   bool
	lastScanTime time.Time
	lastResult   ScanResult
	lastScanErr  error
	startTime    time.Time

	processed atomic.Int64
	failed    atomic.Int64
}

// ScanResult summarizes one pass over the media directory.
type ScanResult struct {
	Found     int           `json:"found"`
	Queued    int           `json:"queued"`
	Processed int           `json:"processed"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Scanning      bool        `json:"scanning"`
	StartTime     time.Time   `json:"startTime"`
	Uptime        string      `json:"uptime"`
	LastScan      time.Time   `json:"lastScan,omitempty"`
	LastScanError string      `json:"lastScanError,omitempty"`
	LastResult    *ScanResult `json:"lastResult,omitempty"`
	VideosDone    int64       `json:"videosProcessed"`
	VideosFailed  int64       `json:"videosFailed"`
	WorkerCount   int         `json:"workers"`
	ScanInterval  string      `json:"scanInterval"`
}

// ErrScanInProgress is returned by Scan when another scan is running.
var ErrScanInProgress = errors.New("scan already in progress")

// New creates an Indexer. lookup may be nil, in which case every video is
// processed on every scan.
func New(proc Processor, lookup Lookup, mediaDir string, scanInterval time.Duration) *Indexer {
	if scanInterval <= 0 {
		scanInterval = defaultScanInterval
	}
	return &Indexer{
		proc:         proc,
		lookup:       lookup,
		mediaDir:     mediaDir,
		scanInterval: scanInterval,
		numWorkers:   workers.ForMixed(maxWorkers),
		stopChan:     make(chan struct{}),
		startTime:    time.Now(),
	}
}

// SetWorkers overrides the worker pool size.
func (idx *Indexer) SetWorkers(n int) {
	if n > 0 {
		idx.numWorkers = n
	}
}

// SetThrottle makes workers wait on t before each generation.
func (idx *Indexer) SetThrottle(t Throttle) {
	idx.throttle = t
}

// Start runs an initial scan in the background and then rescans every
// scan interval until Stop is called or ctx is done.
func (idx *Indexer) Start(ctx context.Context) {
	ctx, idx.cancel = context.WithCancel(ctx)

	go func() {
		logging.Info("Starting initial scan of %s (%d workers)", idx.mediaDir, idx.numWorkers)
		if _, err := idx.Scan(ctx); err != nil {
			logging.Error("Initial scan error: %v", err)
		}

		ticker := time.NewTicker(idx.scanInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				logging.Debug("Periodic scan triggered")
				if _, err := idx.Scan(ctx); err != nil && !errors.Is(err, ErrScanInProgress) {
					logging.Error("Periodic scan failed: %v", err)
				}
			case <-idx.stopChan:
				logging.Info("Watcher stopped")
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the periodic scan and cancels any running generation.
func (idx *Indexer) Stop() {
	idx.stopOnce.Do(func() {
		close(idx.stopChan)
		if idx.cancel != nil {
			idx.cancel()
		}
	})
}

// TriggerScan starts a scan in the background.
func (idx *Indexer) TriggerScan(ctx context.Context) {
	go func() {
		if _, err := idx.Scan(ctx); err != nil && !errors.Is(err, ErrScanInProgress) {
			logging.Error("Manually triggered scan failed: %v", err)
		}
	}()
}

func (idx *Indexer) tryStartScan() bool {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()
	if idx.isScanning {
		return false
	}
	idx.isScanning = true
	metrics.WatcherRunning.Set(1)
	return true
}

func (idx *Indexer) finishScan(res ScanResult, err error) {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()
	idx.isScanning = false
	idx.lastScanTime = time.Now()
	idx.lastResult = res
	idx.lastScanErr = err
	metrics.WatcherRunning.Set(0)
	metrics.WatcherScansTotal.Inc()
	metrics.WatcherLastScanTimestamp.Set(float64(idx.lastScanTime.Unix()))
}

// Scan walks the media directory once and processes every video that needs
// thumbnails. Videos are independent: a failure on one is logged and
// counted, never aborting the scan.
func (idx *Indexer) Scan(ctx context.Context) (ScanResult, error) {
	if !idx.tryStartScan() {
		return ScanResult{}, ErrScanInProgress
	}

	start := time.Now()
	var res ScanResult

	pending, found, err := idx.collect(ctx)
	res.Found = found
	res.Skipped = found - len(pending)
	if err != nil {
		res.Duration = time.Since(start)
		idx.finishScan(res, err)
		return res, err
	}

	res.Queued = len(pending)
	metrics.WatcherVideosQueued.Add(float64(len(pending)))

	processed, failed := idx.process(ctx, pending)
	res.Processed = processed
	res.Failed = failed
	res.Duration = time.Since(start)

	idx.finishScan(res, ctx.Err())
	logging.Info("Scan complete: %d videos found, %d processed, %d skipped, %d failed in %v",
		res.Found, res.Processed, res.Skipped, res.Failed, res.Duration)
	return res, ctx.Err()
}

// collect returns the videos that need generation and the total number of
// videos seen.
func (idx *Indexer) collect(ctx context.Context) ([]string, int, error) {
	var pending []string
	found := 0

	err := filepath.WalkDir(idx.mediaDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("Error accessing %s: %v", path, err)
			if d != nil && d.IsDir() && path != idx.mediaDir {
				return filepath.SkipDir
			}
			if path == idx.mediaDir {
				return err
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		name := d.Name()
		if d.IsDir() {
			if path != idx.mediaDir && (strings.HasPrefix(name, ".") || mediatypes.IsThumbnailDir(name)) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !mediatypes.IsVideo(name) {
			return nil
		}

		found++
		info, err := d.Info()
		if err != nil {
			logging.Warn("Cannot stat %s: %v", path, err)
			return nil
		}
		if idx.upToDate(ctx, path, info.ModTime()) {
			return nil
		}
		pending = append(pending, path)
		return nil
	})

	return pending, found, err
}

// upToDate reports whether the video was already processed at its current
// modification time. Failed runs are retried; "no thumbnail" runs are not.
func (idx *Indexer) upToDate(ctx context.Context, path string, modTime time.Time) bool {
	if idx.lookup == nil {
		return false
	}
	v, err := idx.lookup.GetVideo(ctx, idx.proc.Name(path))
	if err != nil {
		logging.Warn("Lookup failed for %s: %v", path, err)
		return false
	}
	if v == nil || v.Status == database.StatusFailed {
		return false
	}
	return v.ModTime.Unix() == modTime.Unix()
}

func (idx *Indexer) process(ctx context.Context, paths []string) (processed, failed int) {
	if len(paths) == 0 {
		return 0, 0
	}

	jobs := make(chan string)
	var (
		wg        sync.WaitGroup
		nOK, nErr atomic.Int64
	)

	n := idx.numWorkers
	if n > len(paths) {
		n = len(paths)
	}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if idx.throttle != nil && !idx.throttle.WaitIfPaused(ctx) {
					continue
				}
				if _, err := idx.proc.Save(ctx, path); err != nil {
					logging.Error("Thumbnail generation failed for %s: %v", path, err)
					nErr.Add(1)
					idx.failed.Add(1)
					continue
				}
				nOK.Add(1)
				idx.processed.Add(1)
			}
		}()
	}

feed:
	for _, p := range paths {
		select {
		case jobs <- p:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return int(nOK.Load()), int(nErr.Load())
}

// IsScanning returns whether a scan is currently in progress.
func (idx *Indexer) IsScanning() bool {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()
	return idx.isScanning
}

// LastScanTime returns the time of the last completed scan.
func (idx *Indexer) LastScanTime() time.Time {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()
	return idx.lastScanTime
}

// GetHealthStatus returns detailed health information.
func (idx *Indexer) GetHealthStatus() HealthStatus {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()

	status := HealthStatus{
		Scanning:     idx.isScanning,
		StartTime:    idx.startTime,
		Uptime:       time.Since(idx.startTime).String(),
		LastScan:     idx.lastScanTime,
		VideosDone:   idx.processed.Load(),
		VideosFailed: idx.failed.Load(),
		WorkerCount:  idx.numWorkers,
		ScanInterval: idx.scanInterval.String(),
	}
	if !idx.lastScanTime.IsZero() {
		res := idx.lastResult
		status.LastResult = &res
	}
	if idx.lastScanErr != nil {
		status.LastScanError = idx.lastScanErr.Error()
	}
	return status
}
