// Package repository persists feedback records in PostgreSQL and computes
// the aggregate statistics over them.
//
// Every exported operation opens its own transaction, so callers never see a
// half-applied write and never hold a connection between calls.
package repository
