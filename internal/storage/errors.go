package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"finbot/internal/core"
)

// translate maps driver errors onto core error kinds. Errors it does not
// recognize are wrapped with op and returned as-is.
func translate(op, entity string, id int64, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return core.NotFound(entity, id)
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return core.Conflict(entity, uniqueColumn(sqliteErr.Error()))
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return foreignKeyError(entity)
		case sqlite3.SQLITE_CONSTRAINT_TRIGGER:
			// ON DELETE RESTRICT is enforced by an internal trigger.
			if strings.Contains(sqliteErr.Error(), "FOREIGN KEY") {
				return foreignKeyError(entity)
			}
		case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return core.Invalid("", fmt.Sprintf("%s violates a constraint", entity))
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func foreignKeyError(entity string) error {
	return &core.Error{
		Kind:    core.ErrForeignKey,
		Entity:  entity,
		Message: fmt.Sprintf("%s references a row that does not exist", entity),
	}
}

// uniqueColumn extracts the column name from a message such as
// "UNIQUE constraint failed: user.login (2067)".
func uniqueColumn(msg string) string {
	const marker = "constraint failed: "
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	if j := strings.IndexAny(rest, " ,("); j >= 0 {
		rest = rest[:j]
	}
	if k := strings.LastIndex(rest, "."); k >= 0 {
		rest = rest[k+1:]
	}
	return rest
}
