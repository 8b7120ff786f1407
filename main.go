package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"videothumbs/internal/database"
	"videothumbs/internal/filesystem"
	"videothumbs/internal/handlers"
	"videothumbs/internal/indexer"
	"videothumbs/internal/library"
	"videothumbs/internal/logging"
	"videothumbs/internal/memory"
	"videothumbs/internal/metrics"
	"videothumbs/internal/middleware"
	"videothumbs/internal/startup"
	"videothumbs/internal/storage"
	"videothumbs/internal/thumbnail"
	"videothumbs/internal/videothumb"
	"videothumbs/internal/workers"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [video ...]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintln(flag.CommandLine.Output(), "With video arguments, generates their thumbnails and exits.")
		fmt.Fprintln(flag.CommandLine.Output(), "Without, watches MEDIA_DIR and serves the HTTP API until interrupted.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		info := startup.GetBuildInfo()
		fmt.Printf("videothumbs %s (%s, %s, %s/%s)\n", info.Version, info.Commit, info.GoVersion, info.OS, info.Arch)
		return
	}

	// A missing .env file is normal
	_ = godotenv.Load()

	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	startup.LogMemoryConfig(memory.Apply(config.MemoryLimits()))
	workers.SetOverride(config.Workers)
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"media":    config.MediaDir,
		"output":   config.OutputDir,
		"temp":     config.TempDir,
		"database": filepath.Dir(config.DatabasePath),
	}))

	metrics.InitializeMetrics()
	info := startup.GetBuildInfo()
	metrics.AppInfo.WithLabelValues(info.Version, info.Commit, info.GoVersion).Set(1)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	store, err := openStore(ctx, config)
	if err != nil {
		startup.LogFatal("Failed to initialize storage: %v", err)
	}

	if config.UseVips {
		thumbnail.InitVips()
		defer thumbnail.ShutdownVips()
	}

	gen, err := videothumb.NewFromConfig(config.GeneratorConfig())
	if err != nil {
		startup.LogFatal("Failed to initialize generator: %v", err)
	}
	renderer := "imaging"
	if config.UseVips {
		renderer = "vips"
	}
	startup.LogGeneratorInit(config, renderer)

	svc, err := library.New(gen, store, library.Options{
		Specs:    config.Specs(),
		MediaDir: config.MediaDir,
		TempDir:  config.TempDir,
		Index:    db,
	})
	if err != nil {
		startup.LogFatal("Failed to initialize library: %v", err)
	}

	if flag.NArg() > 0 {
		if failed := runOnce(ctx, svc, flag.Args()); failed > 0 {
			logging.Error("%d of %d videos failed", failed, flag.NArg())
			os.Exit(1)
		}
		return
	}

	serve(ctx, config, svc, db, startTime)
}

func openStore(ctx context.Context, config *startup.Config) (storage.Store, error) {
	switch config.StorageBackend {
	case "minio":
		s, err := storage.NewMinIOStore(config.StorageConfig())
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		startup.LogStorageInit("minio", config.MinIO.Endpoint+"/"+config.MinIO.Bucket)
		return s, nil
	default:
		s, err := storage.NewFileStore(config.OutputDir)
		if err != nil {
			return nil, err
		}
		startup.LogStorageInit("fs", s.Root())
		return s, nil
	}
}

// runOnce generates thumbnails for each path and returns how many failed.
// Videos the decoder cannot open are skipped, not failed.
func runOnce(ctx context.Context, svc *library.Service, paths []string) int {
	failed := 0
	for i, p := range paths {
		if ctx.Err() != nil {
			logging.Warn("Interrupted, %d videos not processed", len(paths)-i)
			return failed + 1
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		thumbs, err := svc.Save(ctx, abs)
		if err != nil {
			logging.Error("%s: %v", p, err)
			failed++
			continue
		}
		if len(thumbs) == 0 {
			logging.Info("%s: no thumbnail (decoder unavailable)", p)
			continue
		}
		for _, th := range thumbs {
			fmt.Println(th.StorageKey)
		}
	}
	return failed
}

func serve(ctx context.Context, config *startup.Config, svc *library.Service, db *database.Database, startTime time.Time) {
	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	idx := indexer.New(svc, db, config.MediaDir, config.ScanInterval)
	idx.SetThrottle(monitor)
	startup.LogWatcherInit(config.ScanInterval, idx.GetHealthStatus().WorkerCount)
	idx.Start(ctx)
	startup.LogWatcherStarted()

	h := handlers.New(ctx, svc, db, idx, config.MediaDir)
	router := mux.NewRouter()
	h.Register(router)
	router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggingConfig.SkipPaths = []string{"/metrics"}
	handler := middleware.Logger(loggingConfig)(router)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		// uploads and generations can take minutes
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		startup.LogServerStarted(startup.ServerConfig{
			Port:            config.Port,
			StartupDuration: time.Since(startTime),
		})
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			startup.LogFatal("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	startup.LogShutdownInitiated("signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping watcher")
	idx.Stop()
	startup.LogShutdownStepComplete("Watcher stopped")

	startup.LogShutdownStep("Stopping memory monitor")
	monitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
