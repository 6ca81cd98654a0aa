// Package repository contains the MySQL-backed implementations of the
// engine's store interfaces.  Every repository translates driver-level
// failures into the shared storage sentinels so the engine can treat
// MySQL and the in-memory store identically.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/mycinema/screening-engine/internal/storage"
)

// MySQL server error numbers the repositories care about.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// translate maps a database error onto the storage sentinels.
// sql.ErrNoRows becomes ErrNotFound, duplicate-key violations become
// ErrDuplicate, and deadlocks or lock wait timeouts become the
// retryable ErrConflict.  Anything else passes through unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlErrDuplicateEntry:
			return storage.ErrDuplicate
		case mysqlErrDeadlock, mysqlErrLockWaitTimeout:
			return storage.ErrConflict
		}
	}
	return err
}
