// Package library manages the stored thumbnail set of each video.
//
// A Service renders every configured size with one generation call, writes
// each to the storage backend under <dir>/thumbnail/<base>.<w>x<h>.jpeg and
// records the run in the index. Videos the decoder cannot open get no
// thumbnails and no error. Non-local content is spooled into the temp
// directory first.
package library
