// Package database owns the process-wide sqlite handle used for prediction
// history. The handle is opened once and shared; sqlite serializes writers,
// so the pool stays small.
package database

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

var (
	db   *sql.DB
	once sync.Once
)

// Config holds database configuration
type Config struct {
	Path string
}

// Init opens the database, switches it to WAL mode and applies the schema.
// Repeated calls are no-ops.
func Init(cfg Config) error {
	var err error
	once.Do(func() {
		db, err = sql.Open("sqlite", cfg.Path)
		if err != nil {
			err = fmt.Errorf("open database %s: %w", cfg.Path, err)
			return
		}

		// One writer at a time under WAL; readers do not block it.
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)

		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout=5000",
		} {
			if _, err = db.Exec(pragma); err != nil {
				err = fmt.Errorf("apply %s: %w", pragma, err)
				return
			}
		}

		if err = db.Ping(); err != nil {
			err = fmt.Errorf("ping database: %w", err)
			return
		}

		err = Migrate(db)
	})
	return err
}

// GetDB returns the shared database handle, or nil before Init.
func GetDB() *sql.DB {
	return db
}

// Close closes the database connection
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// Transaction runs fn inside a transaction, rolling back on error or panic.
func Transaction(fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
