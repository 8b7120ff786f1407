// Package indexer watches the media directory and keeps every video's
// thumbnails current.
//
// Each scan walks the directory, skipping hidden entries and the generated
// "thumbnail" directories, and queues every video whose recorded run is
// missing, failed, or older than the file. Queued videos are processed on a
// worker pool sized for mixed CPU and I/O work; each video is an independent
// generation and a failure on one never stops the others.
//
// A scan runs at startup and then on a fixed interval. Only one scan runs at
// a time; overlapping requests return ErrScanInProgress.
package indexer
