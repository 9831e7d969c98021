// Package sqlerr classifies PostgreSQL driver errors and wraps every failed
// store operation into a single access error kind.
//
// Callers check errors.Is(err, ErrStoreAccess) to know the store failed and
// errors.As to reach the driver cause (*pgconn.PgError, *Error).
package sqlerr
