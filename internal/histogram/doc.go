// Package histogram picks the most representative frame of a batch.
//
// Every frame is reduced to a color histogram (256 bins per channel). The
// per-bin mean over the batch is the reference, and each frame is scored by
// the root-mean-square deviation of its histogram from that mean. The frame
// with the lowest score wins; the first one wins ties.
package histogram
