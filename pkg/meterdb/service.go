// MeterDB stores the decoded meter readings in SQLite. The file is only
// written by the dispatch loop but may be read by other tooling, so
// nothing else in this process should open it for writing.
package meterdb

import (
	"database/sql"
	"embed"

	"github.com/NotCoffee418/dbmigrator"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type MeterStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
func Open(path string) (*MeterStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	dbmigrator.SetDatabaseType(dbmigrator.SQLite)
	<-dbmigrator.MigrateUpCh(
		db,
		migrationFS,
		"migrations",
	)

	return &MeterStore{db: db}, nil
}

func (s *MeterStore) Close() error {
	return s.db.Close()
}

// DB exposes the handle for the aggregator's rollup queries.
func (s *MeterStore) DB() *sql.DB {
	return s.db
}
