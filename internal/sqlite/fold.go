package sqlite

import (
	"database/sql/driver"
	"strings"

	sqlitedriver "modernc.org/sqlite"
)

// foldFunc is the SQL name of foldCase. SQLite's lower() folds ASCII only.
const foldFunc = "fold_case"

func init() {
	sqlitedriver.MustRegisterDeterministicScalarFunction(foldFunc, 1, foldCase)
}

// foldCase lowercases text values with Unicode rules, the same folding
// Search applies to the query text. Non-text values pass through.
func foldCase(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
