// Package videothumb selects the most representative frame of a video and
// renders thumbnails from it.
//
// One call walks a fixed sequence: resolve the orientation hint, sample the
// leading frames with the correction applied, score them by histogram
// distance from the batch mean, render every requested size from the winner
// and remove the temporary frames. Any failure short-circuits to the
// cleanup step.
//
// Failures come in two kinds. ErrDecoderUnavailable is soft: the decoder is
// an optional tool and its absence simply means no thumbnail. ErrNoUsableFrames
// and ErrEncoding are hard and reach the caller. Missing orientation metadata
// is absorbed and treated as no rotation.
package videothumb
