package errors

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapDBError converts errors from the postgres token store into AppErrors.
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "Storage request timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Storage request was canceled.")
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, pgx.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "Key not found")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	out := Wrap(pgErr, ErrCodeInternal, "A storage database error occurred. Please try again.")
	switch code := pgErr.Code; {
	case code == pgerrcode.UndefinedTable:
		out.Message = "Client storage table is missing. Run `joinify migrate-storage` first."
	case code == pgerrcode.InsufficientPrivilege:
		out.Code, out.Message = ErrCodeForbidden, "Storage user lacks privileges on the client storage table."
	case pgerrcode.IsConnectionException(code):
		out.Code, out.Message = ErrCodeNetwork, "Lost connection to the storage database."
	case code == pgerrcode.StringDataRightTruncationDataException:
		out.Code, out.Message, out.Field = ErrCodeValidation, "Stored value is too long.", pgErr.ColumnName
	}
	return out
}
