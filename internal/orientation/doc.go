// Package orientation maps the rotation hint stored by phones and cameras in
// a video's stream metadata to a quarter-turn correction.
//
// The hint is read once per video with ffprobe and the resulting Correction
// is handed to the frame sampler, which bakes it into every extracted frame.
// Metadata problems are never fatal: they resolve to None.
package orientation
