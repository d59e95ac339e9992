package database

import (
	"github.com/doug-martin/goqu/v9"
	// dialects register themselves with goqu
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
)

// Dialect returns the goqu SQL builder matching a backend.
func Dialect(d Driver) goqu.DialectWrapper {
	if d == DriverSQLite {
		return goqu.Dialect("sqlite3")
	}
	return goqu.Dialect("postgres")
}

// Builder is a convenience for Dialect(conn.Driver()).
func Builder(conn Connection) goqu.DialectWrapper {
	return Dialect(conn.Driver())
}
