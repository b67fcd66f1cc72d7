package sqlc

import "database/sql"

// DBTX is satisfied by *sql.DB and *sql.Tx, letting every query run
// either directly or inside a caller-managed transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Queries wraps a DBTX with the drive_events statements.
type Queries struct {
	db DBTX
}

// New wraps db (a *sql.DB or *sql.Tx) with the drive_events query set.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to tx, for callers that need several
// statements to commit atomically.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}
