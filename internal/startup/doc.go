// Package startup handles configuration loading and startup/shutdown logging.
//
// # Configuration
//
// Configuration is parsed from environment variables by [ParseConfig] with
// caarlos0/env. [LoadConfig] additionally logs every value and prepares the
// directories the service writes to.
//
//   - MEDIA_DIR: directory watched for videos (default: /media)
//   - OUTPUT_DIR: thumbnail root for the fs backend (default: /thumbnails)
//   - TEMP_DIR: sampled frames and spooled uploads (default: /tmp/videothumbs)
//   - DATABASE_DIR: SQLite index location (default: /database)
//   - PORT: HTTP port for the API, /health and /metrics (default: 8080)
//   - SCAN_INTERVAL: watcher rescan interval (default: 5m)
//   - THUMBNAIL_WORKERS: pin the watcher worker count (default: auto)
//   - THUMBNAIL_SIZES: comma-separated WIDTHxHEIGHT list (default: 100x100,160x90)
//   - AUTO_CROP: center-crop to square before resizing square sizes (default: true)
//   - SAMPLE_FRAMES: leading frames considered per video (default: 100)
//   - RESAMPLE_FILTER: lanczos, catmullrom, linear, box or nearest (default: lanczos)
//   - JPEG_QUALITY: 1-100 (default: 75)
//   - DECODE_TIMEOUT: bound on one ffmpeg or ffprobe run (default: 2m)
//   - FRAME_FORMAT: jpg, png or webp (default: jpg)
//   - FFMPEG_PATH: decoder executable (default: ffmpeg)
//   - CORRECT_IN_PROCESS: rotate frames in Go rather than with ffmpeg filters
//   - USE_VIPS: render thumbnails with libvips
//   - STORAGE_BACKEND: fs or minio (default: fs)
//   - MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY, MINIO_USE_SSL,
//     MINIO_BUCKET, MINIO_PREFIX: object storage settings
//   - GOMEMLIMIT, MEMORY_LIMIT, MEMORY_RATIO: see package memory
//   - LOG_LEVEL, DEBUG, LOG_FORMAT: see package logging
//   - LOG_HEALTH_CHECKS: log /health requests (default: true)
//
// # Build Information
//
// Version, Commit and BuildTime are injected via -ldflags and exposed by
// [GetBuildInfo].
package startup
