package pg

import (
	"database/sql"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/pkg/errors"
)

// CheckNoRows maps sql.ErrNoRows to outErr, passing other errors through
func CheckNoRows(inErr, outErr error) error {
	if IsNoRows(inErr) {
		return outErr
	}
	return inErr
}

func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// CheckUniqueViolation maps unique constraint violations to outErr, passing
// other errors through
func CheckUniqueViolation(inErr, outErr error) error {
	if IsUniqueViolation(inErr) {
		return outErr
	}
	return inErr
}

func IsUniqueViolation(err error) bool {
	return hasCode(err, pgerrcode.UniqueViolation)
}

// IsSerializationFailure reports whether err is a conflict between concurrent
// serializable transactions, which can be retried
func IsSerializationFailure(err error) bool {
	return hasCode(err, pgerrcode.SerializationFailure)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
