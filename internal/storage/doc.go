// Package storage persists generated thumbnails.
//
// Keys follow <dir>/thumbnail/<base>.<w>x<h>.jpeg relative to the video's
// own location. FileStore writes under a local directory; MinIOStore writes
// to an S3-compatible bucket.
package storage
