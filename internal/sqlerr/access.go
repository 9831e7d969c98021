package sqlerr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrStoreAccess matches every *AccessError through errors.Is.
	ErrStoreAccess = errors.New("feedback store access failed")

	// ErrNotFound is the cause of a write that matched no row.
	ErrNotFound = errors.New("record not found")
)

// AccessError is returned by every failed store operation. Err is the
// failure as the operation reported it; SQL is its classified PostgreSQL
// cause, when there is one.
type AccessError struct {
	Op   string
	Code Code
	Err  error
	SQL  *Error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreAccess, e.Op, e.Err)
}

func (e *AccessError) Unwrap() []error {
	if e.SQL == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.SQL}
}

func (e *AccessError) Is(target error) bool {
	return target == ErrStoreAccess
}

// Wrap turns err into an *AccessError for op. PostgreSQL errors are
// classified into SQL while err keeps its full chain. A nil err stays nil and an
// existing AccessError is returned unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	var accessErr *AccessError
	if errors.As(err, &accessErr) {
		return err
	}

	wrapped := &AccessError{Op: op, Code: Other, Err: err}

	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		wrapped.SQL = ConvertPgError(pgErr)
		wrapped.Code = wrapped.SQL.Code
	case errors.Is(err, ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		wrapped.Code = NotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		wrapped.Code = QueryCanceled
	}

	return wrapped
}

// ErrCode returns the classification of err, or Other.
func ErrCode(err error) Code {
	var accessErr *AccessError
	if errors.As(err, &accessErr) {
		return accessErr.Code
	}
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	return Other
}

// ConvertPgError classifies a raw PostgreSQL error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}
