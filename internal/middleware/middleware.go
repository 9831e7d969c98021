// Package middleware holds the Echo middleware shared by the operational
// routes: request ids, request scoped loggers, New Relic tracing, request
// logging and the global error handler.
package middleware
