// Package mediatypes holds the file-type tables shared by the watcher, the
// HTTP handlers and configuration validation.
//
// It has no dependencies beyond the standard library so any package can
// import it without creating cycles.
//
//	if mediatypes.IsVideo(path) {
//	    // queue for thumbnail generation
//	}
package mediatypes
