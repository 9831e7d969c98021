// Package errs defines the error shapes returned by the operational HTTP
// surface, so every client sees the same JSON body whatever failed.
package errs
