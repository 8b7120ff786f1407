// Package database keeps a SQLite record of processed videos.
//
// Each video has one row describing its last generation run (selected frame,
// orientation, outcome) and one row per stored thumbnail size. The watcher
// uses it to skip unchanged videos; the delete path uses it to find every
// stored size.
//
// The database uses WAL mode so readers (the HTTP API) do not block the
// watcher's writes.
package database
