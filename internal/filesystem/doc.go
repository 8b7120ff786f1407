/*
Package filesystem wraps os.Stat, os.Open and os.Remove with retries for
NFS stale file handle errors (ESTALE).

Media and output directories are often NFS mounts. A file replaced on the
server while a scan holds its handle fails with ESTALE, and the next attempt
normally succeeds. Any other error is returned immediately.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

Retries back off exponentially from InitialBackoff to MaxBackoff. Stale
errors, retries and final failures are counted per operation and volume; the
volume label comes from the resolver installed with SetDefaultVolumeResolver:

	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
	    "media":  cfg.MediaDir,
	    "output": cfg.OutputDir,
	    "temp":   cfg.TempDir,
	}))
*/
package filesystem
