package credential

import (
	fibermysql "github.com/gofiber/storage/mysql/v2"
	fiberpostgres "github.com/gofiber/storage/postgres/v3"
)

// DefaultFiberTable is the table the gofiber storage drivers write to.
const DefaultFiberTable = "propdesk_credentials"

// NewFiberMySQLBackend returns a gofiber MySQL storage. Used when several
// console instances share one credential database.
func NewFiberMySQLBackend(connectionURI, table string) Backend {
	if table == "" {
		table = DefaultFiberTable
	}

	return fibermysql.New(fibermysql.Config{
		ConnectionURI: connectionURI,
		Table:         table,
	})
}

// NewFiberPostgresBackend returns a gofiber PostgreSQL storage.
func NewFiberPostgresBackend(connectionURI, table string) Backend {
	if table == "" {
		table = DefaultFiberTable
	}

	return fiberpostgres.New(fiberpostgres.Config{
		ConnectionURI: connectionURI,
		Table:         table,
	})
}
