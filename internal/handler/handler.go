// Package handler serves the operational HTTP routes: dependency health,
// Prometheus metrics and on-demand digest jobs.
package handler
