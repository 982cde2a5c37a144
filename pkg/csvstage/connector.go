package csvstage

import (
	"context"
	"database/sql"
)

// Connector establishes a database session.
// Different implementations handle the supported authentication methods.
type Connector interface {
	// Connect opens a session with one pinned server connection.
	// The returned session must be closed by the caller.
	Connect(ctx context.Context) (Session, error)
}

// Session is an open database session owned by a single goroutine.
// Session-level settings (such as XACT_ABORT) and transactions issued
// through Conn share one server connection.
type Session interface {
	// Conn returns the pinned connection used for DDL and DML.
	Conn() SQLConn

	// ServerName returns the name the server reported at connect time.
	ServerName() string

	// Close releases the session. Safe to call more than once.
	Close() error
}

// SQLConn is the subset of *sql.Conn the staging orchestrator needs.
type SQLConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
