package sqlerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Naenyn/FeedbackPortlet/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapCode(t *testing.T) {
	tests := map[string]Code{
		"23505": UniqueViolation,
		"23503": ForeignKeyViolation,
		"23502": NotNullViolation,
		"23514": CheckViolation,
		"40001": SerializationFailure,
		"57014": QueryCanceled,
		"42P01": UndefinedTable,
		"08006": ConnectionFailure,
		"XX000": Other,
		"":      Other,
	}
	for state, want := range tests {
		assert.Equal(t, want, MapCode(state), state)
	}
}

func TestMapSeverity(t *testing.T) {
	assert.Equal(t, SeverityFatal, MapSeverity("FATAL"))
	assert.Equal(t, SeverityError, MapSeverity("ERROR"))
	assert.Equal(t, SeverityError, MapSeverity("something else"))
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap("store", nil))
	})

	t.Run("pg errors keep the driver cause", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23502", Severity: "ERROR", TableName: "feedback_items", ColumnName: "user_id"}
		err := Wrap("store", fmt.Errorf("insert: %w", pgErr))

		assert.ErrorIs(t, err, ErrStoreAccess)
		assert.Equal(t, NotNullViolation, ErrCode(err))

		var accessErr *AccessError
		require.ErrorAs(t, err, &accessErr)
		assert.Equal(t, "store", accessErr.Op)

		var gotPg *pgconn.PgError
		require.ErrorAs(t, err, &gotPg)
		assert.Same(t, pgErr, gotPg)
	})

	t.Run("pg errors keep operation context and joined errors", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", Severity: "ERROR", TableName: "feedback_items"}
		rollbackErr := errors.New("rollback failed: conn closed")
		err := Wrap("store", errors.Join(fmt.Errorf("insert feedback: %w", pgErr), rollbackErr))

		assert.Contains(t, err.Error(), "insert feedback")
		assert.Contains(t, err.Error(), "rollback failed: conn closed")
		assert.ErrorIs(t, err, rollbackErr)
		assert.Equal(t, UniqueViolation, ErrCode(err))

		var accessErr *AccessError
		require.ErrorAs(t, err, &accessErr)
		require.NotNil(t, accessErr.SQL)
		assert.Equal(t, "feedback_items", accessErr.SQL.TableName)

		var sqlErr *Error
		require.ErrorAs(t, err, &sqlErr)
		assert.Same(t, accessErr.SQL, sqlErr)

		var gotPg *pgconn.PgError
		require.ErrorAs(t, err, &gotPg)
		assert.Same(t, pgErr, gotPg)
	})

	t.Run("not found", func(t *testing.T) {
		err := Wrap("store", ErrNotFound)
		assert.ErrorIs(t, err, ErrStoreAccess)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, NotFound, ErrCode(err))
	})

	t.Run("cancellation", func(t *testing.T) {
		err := Wrap("list", context.Canceled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, QueryCanceled, ErrCode(err))
	})

	t.Run("does not double wrap", func(t *testing.T) {
		first := Wrap("stats", errors.New("boom"))
		assert.Same(t, first, Wrap("outer", first))
	})

	t.Run("message names the operation", func(t *testing.T) {
		err := Wrap("count", errors.New("boom"))
		assert.Equal(t, "feedback store access failed: count: boom", err.Error())
	})
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not null violation",
			err:        Wrap("store", &pgconn.PgError{Code: "23502", TableName: "feedback_items", ColumnName: "feedback_type"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "FEEDBACK_ITEM_REQUIRED",
		},
		{
			name:       "unique violation",
			err:        Wrap("store", &pgconn.PgError{Code: "23505", TableName: "feedback_items", ConstraintName: "feedback_items_id_key"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "FEEDBACK_ITEM_ALREADY_EXISTS",
		},
		{
			name:       "missing record",
			err:        Wrap("store", fmt.Errorf("feedback item 7: %w", ErrNotFound)),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "no rows",
			err:        pgx.ErrNoRows,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "connection failure",
			err:        Wrap("list", &pgconn.PgError{Code: "08006"}),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "SERVICE_UNAVAILABLE",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var httpErr *errs.HTTPError
			require.ErrorAs(t, HandleError(tt.err), &httpErr)
			assert.Equal(t, tt.wantStatus, httpErr.Status)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}

	t.Run("http errors pass through", func(t *testing.T) {
		in := errs.NewBadRequestError("bad", true, nil, nil)
		assert.Same(t, in, HandleError(in))
	})
}

func TestExtractColumnForUniqueViolation(t *testing.T) {
	assert.Equal(t, "email", extractColumnForUniqueViolation("unique_users_email"))
	assert.Equal(t, "id", extractColumnForUniqueViolation("feedback_items_id_key"))
	assert.Equal(t, "", extractColumnForUniqueViolation("feedback_items_pkey"))
	assert.Equal(t, "", extractColumnForUniqueViolation(""))
}

func TestHumanizeText(t *testing.T) {
	assert.Equal(t, "Feedback Type", humanizeText("feedback_type"))
	assert.Equal(t, "User", getEntityName("feedback_items", "user_id"))
	assert.Equal(t, "Feedback Item", getEntityName("feedback_items", ""))
	assert.Equal(t, "record", getEntityName("", ""))
}
