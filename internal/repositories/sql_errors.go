package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"tenantadmin/internal/domain"
)

const mysqlDuplicateEntry = 1062

// MySQL rejects a REGEXP_LIKE pattern with one of these (ER_REGEXP_ILLEGAL_ARGUMENT..ER_REGEXP_INVALID_RANGE).
const (
	mysqlRegexpFirst = 3685
	mysqlRegexpLast  = 3697
)

var errUnsupportedPattern = domain.ValidationError{Field: "regex", Msg: "pattern is not supported by the store"}

// handleSQLError maps driver errors onto the domain taxonomy.
func handleSQLError(op, resource string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.CanceledError{Op: op, Err: err}
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch {
		case myErr.Number == mysqlDuplicateEntry:
			return domain.ConflictError{Resource: resource, Msg: "already exists", Err: err}
		case myErr.Number >= mysqlRegexpFirst && myErr.Number <= mysqlRegexpLast:
			ve := errUnsupportedPattern
			ve.Err = err
			return ve
		}
	}
	return domain.StoreError{
		Op:        op,
		Retryable: errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn),
		Err:       err,
	}
}

// tableOf maps a collection name onto its MySQL table.
func tableOf(collection string) string {
	return strings.ReplaceAll(collection, "-", "_")
}

// columnOf maps a schema field onto its MySQL column.
func columnOf(field string) string {
	if field == "_id" {
		return "id"
	}
	return field
}
