package sqlite

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/aussiebroadwan/stanza/internal/auth/store"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConflict turns UNIQUE and PRIMARY KEY violations into
// store.ErrAlreadyExists. Other constraint failures (foreign keys, checks)
// pass through untouched.
func mapConflict(err error) error {
	if err == nil {
		return nil
	}

	var serr *moderncsqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return errors.Join(store.ErrAlreadyExists, err)
		case sqlite3.SQLITE_CONSTRAINT:
			// Extended codes are off unless the connection asks for them.
			if strings.Contains(serr.Error(), "UNIQUE") {
				return errors.Join(store.ErrAlreadyExists, err)
			}
		}
	}
	return err
}
