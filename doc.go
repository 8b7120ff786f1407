// Command videothumbs picks the most representative frame of each video and
// stores it as JPEG thumbnails in one or more sizes.
//
// For every video it reads the rotation hint with ffprobe, decodes the
// leading frames with ffmpeg into a temporary directory, scores each frame
// by the RMS distance of its color histogram from the batch mean, and
// crops and resizes the closest frame. Temporary frames are removed on every
// path.
//
// # Modes
//
//	videothumbs clip.mp4 other.mov   generate thumbnails and exit
//	videothumbs                      watch MEDIA_DIR and serve the HTTP API
//
// In one-shot mode the storage key of each thumbnail is printed to stdout
// and the exit status is 1 if any video failed. Videos ffmpeg cannot open
// are skipped silently.
//
// In service mode the watcher rescans MEDIA_DIR every SCAN_INTERVAL and the
// HTTP API (package handlers) is served on PORT until SIGINT or SIGTERM.
//
// # Configuration
//
// All settings come from environment variables, optionally from a .env file
// in the working directory. See package startup for the full list.
//
// # Related Packages
//
//   - [videothumbs/internal/videothumb]: representative-frame generation
//   - [videothumbs/internal/library]: per-size storage and indexing
//   - [videothumbs/internal/indexer]: media directory watcher
//   - [videothumbs/internal/handlers]: HTTP API
//   - [videothumbs/internal/startup]: configuration
package main
