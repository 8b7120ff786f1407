// Package handlers provides the HTTP API of the thumbnail service.
//
// Routes:
//
//	GET    /health, /healthz              database and watcher status
//	GET    /livez                         liveness probe
//	GET    /version                       build information
//	GET    /metrics                       Prometheus metrics
//	GET    /api/thumbnails[?video=path]   stored thumbnails
//	POST   /api/scan                      start a watcher scan
//	GET    /api/videos/{path}/thumbnails  one video's record and thumbnails
//	POST   /api/videos/{path}/thumbnails  generate (body optional: video content)
//	DELETE /api/videos/{path}/thumbnails  remove every stored size
//
// A video the decoder cannot open is not an error: POST answers 200 with
// status "no_thumbnail" and an empty list.
package handlers
