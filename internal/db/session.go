package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/vvka-141/csvstage/pkg/csvstage"
)

const queryServerName = "SELECT @@SERVERNAME"

// Session holds one pinned connection from a *sql.DB.
// database/sql would otherwise hand consecutive statements to different
// physical connections, which loses session settings such as XACT_ABORT.
type Session struct {
	db         *sql.DB
	conn       *sql.Conn
	serverName string
	closers    []io.Closer

	closeOnce sync.Once
	closeErr  error
}

// OpenSession pings db, pins a connection and reads the server name.
// On failure db and every closer are released before returning.
// closers are released after the pool when the session closes.
func OpenSession(ctx context.Context, db *sql.DB, closers ...io.Closer) (*Session, error) {
	s := &Session{db: db, closers: closers}

	if err := db.PingContext(ctx); err != nil {
		s.Close()
		return nil, err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.conn = conn

	var name sql.NullString
	if err := conn.QueryRowContext(ctx, queryServerName).Scan(&name); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to read server name: %w", err)
	}
	s.serverName = name.String

	return s, nil
}

func (s *Session) Conn() csvstage.SQLConn {
	return s.conn
}

func (s *Session) ServerName() string {
	return s.serverName
}

// Close returns the pinned connection, closes the pool and any extra
// resources such as a Cloud SQL dialer. Safe to call more than once and on
// a nil Session.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		var errs []error
		if s.conn != nil {
			if err := s.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
				errs = append(errs, err)
			}
		}
		if s.db != nil {
			if err := s.db.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		for _, c := range s.closers {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

var _ csvstage.Session = (*Session)(nil)
