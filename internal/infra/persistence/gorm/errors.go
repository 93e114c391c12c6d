package gormpersistence

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL duplicate key error number.
const mysqlErrDuplicateEntry = 1062

func isDuplicateEntryError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrDuplicateEntry
	}
	return false
}
