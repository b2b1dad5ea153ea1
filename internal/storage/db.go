package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func newQueries(db DBTX, now func() time.Time) *Queries {
	return &Queries{db: db, now: now}
}

// Queries holds the statements for one session.
type Queries struct {
	db  DBTX
	now func() time.Time
}
