// Package db opens and migrates the SQLite mapping store.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"
)

// The store's workload is a single writer with cheap point reads: every
// orchestration flow does at most a handful of mapping lookups and one
// insert or delete, while health probes only ping. Connections are split
// accordingly: one write connection over an immediate-lock WAL, a small
// fixed pool for reads.
const readPoolSize = 4

// OpenMappingStore opens the mapping database at path and returns its write
// and read pools. The write pool holds a single connection with
// txlock=immediate, so a mapping write never has to upgrade a shared lock
// mid-transaction; the read pool serves lookups and pings concurrently.
func OpenMappingStore(path string) (writeDB, readDB *sql.DB, err error) {
	writeDB, err = open(path, true)
	if err != nil {
		return nil, nil, fmt.Errorf("open mapping store (write): %w", err)
	}

	readDB, err = open(path, false)
	if err != nil {
		_ = writeDB.Close()
		return nil, nil, fmt.Errorf("open mapping store (read): %w", err)
	}

	return writeDB, readDB, nil
}

func open(path string, writable bool) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", mappingDSN(path, writable))
	if err != nil {
		return nil, err
	}

	if writable {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(readPoolSize)
		db.SetMaxIdleConns(readPoolSize)
	}
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// mappingDSN builds the connection string. WAL keeps readers unblocked while
// a workflow writes; busy_timeout covers the brief window where the single
// writer holds the lock during a migration.
func mappingDSN(path string, writable bool) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_busy_timeout", "5000")
	params.Set("_synchronous", "NORMAL")
	params.Set("_foreign_keys", "on")
	if writable {
		params.Set("_txlock", "immediate")
	}
	return path + "?" + params.Encode()
}
