// Package logging provides a simple leveled logging interface for videothumbs.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the process
//
// The log level is configured via the LOG_LEVEL environment variable (or
// DEBUG=true). Output goes through zerolog: a console writer by default, JSON
// lines when LOG_FORMAT=json.
package logging
