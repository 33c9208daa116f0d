package errors

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDBError(t *testing.T) {
	plain := errors.New("boom")
	cases := map[string]struct {
		in   error
		want ErrorCode
	}{
		"deadline":               {context.DeadlineExceeded, ErrCodeTimeout},
		"canceled":               {context.Canceled, ErrCodeCanceled},
		"sql no rows":            {sql.ErrNoRows, ErrCodeNotFound},
		"pgx no rows":            {pgx.ErrNoRows, ErrCodeNotFound},
		"undefined table":        {&pgconn.PgError{Code: pgerrcode.UndefinedTable}, ErrCodeInternal},
		"insufficient privilege": {&pgconn.PgError{Code: pgerrcode.InsufficientPrivilege}, ErrCodeForbidden},
		"connection failure":     {&pgconn.PgError{Code: pgerrcode.ConnectionFailure}, ErrCodeNetwork},
		"value too long":         {&pgconn.PgError{Code: pgerrcode.StringDataRightTruncationDataException, ColumnName: "value"}, ErrCodeValidation},
		"deadlock":               {&pgconn.PgError{Code: pgerrcode.DeadlockDetected}, ErrCodeInternal},
		"unrecognized":           {plain, ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := MapDBError(tc.in)
			require.ErrorIs(t, got, tc.in)
			assert.Equal(t, tc.want, GetCode(got))
		})
	}

	assert.NoError(t, MapDBError(nil))
}

func TestMapDBError_MissingTableHint(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.UndefinedTable})
	assert.Contains(t, Message(err), "joinify migrate-storage")
}

func TestMapDBError_ValueTooLongField(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.StringDataRightTruncationDataException, ColumnName: "value"})
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "value", appErr.Field)
}
