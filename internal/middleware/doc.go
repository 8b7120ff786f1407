// Package middleware provides the HTTP middleware of the thumbnail API.
//
// It includes:
//   - Request logging in W3C Extended Log Format through package logging
//   - Prometheus request metrics labelled by route template
package middleware
