package database

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

const (
	dialectSQLite   = "sqlite"
	dialectPostgres = "postgres"

	pqUniqueViolation = "23505"
)

// dialect carries the few places where SQLite and PostgreSQL disagree.
// Queries are written with '?' placeholders and rebound for PostgreSQL.
type dialect struct {
	name          string
	driverName    string
	idColumn      string
	timestampType string
	dollarParams  bool
}

var (
	sqliteDialect = dialect{
		name:          dialectSQLite,
		driverName:    "sqlite",
		idColumn:      "INTEGER PRIMARY KEY AUTOINCREMENT",
		timestampType: "TIMESTAMP",
	}
	postgresDialect = dialect{
		name:          dialectPostgres,
		driverName:    "postgres",
		idColumn:      "BIGSERIAL PRIMARY KEY",
		timestampType: "TIMESTAMPTZ",
		dollarParams:  true,
	}
)

func dialectFor(databaseURL string) dialect {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return postgresDialect
	}
	return sqliteDialect
}

// rebind rewrites '?' placeholders to $1..$n when the dialect needs it.
func (d dialect) rebind(query string) string {
	if !d.dollarParams {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
