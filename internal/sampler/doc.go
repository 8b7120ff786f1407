// Package sampler extracts still frames from a video with an external
// decoder (ffmpeg) and owns their temporary files.
//
// Frames are written as <hash>.<index>.<ext> under a temp directory. The hash
// mixes the video name, the current time and a random id, so concurrent runs
// against the same directory never collide. FrameSet.Close removes everything
// under that hash and must run on every exit path.
package sampler
