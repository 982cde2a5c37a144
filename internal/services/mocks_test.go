package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/csvstage/pkg/csvstage"
)

// mockSession wraps a sqlmock-backed connection.
type mockSession struct {
	conn       *sql.Conn
	serverName string
	closed     int
	closeErr   error
}

func (s *mockSession) Conn() csvstage.SQLConn { return s.conn }
func (s *mockSession) ServerName() string     { return s.serverName }
func (s *mockSession) Close() error {
	s.closed++
	return s.closeErr
}

// newMockSession returns a session whose statements are checked by mock.
func newMockSession(t *testing.T) (*mockSession, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	conn, err := sqlDB.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		sqlDB.Close()
	})

	return &mockSession{conn: conn, serverName: "SQL01"}, mock
}

// mockConnector hands out a fixed session or error.
type mockConnector struct {
	session csvstage.Session
	err     error
	block   bool
}

func (c *mockConnector) Connect(ctx context.Context) (csvstage.Session, error) {
	if c.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.session, nil
}

// mockScanner returns a fixed batch and fixed row counts.
type mockScanner struct {
	batch    *csvstage.Batch
	err      error
	rows     int
	verified []string
	terms    []string
}

func (s *mockScanner) Verify(dir, fieldTerminator string) (*csvstage.Batch, error) {
	s.verified = append(s.verified, dir)
	s.terms = append(s.terms, fieldTerminator)
	return s.batch, s.err
}

func (s *mockScanner) CountDataRows(string) (int, error) {
	return s.rows, nil
}

// mockNamer returns a fixed table name.
type mockNamer struct {
	name  string
	err   error
	calls int
}

func (n *mockNamer) TableName(context.Context) (string, error) {
	n.calls++
	return n.name, n.err
}

// mockProgress counts started activities.
type mockProgress struct {
	mu      sync.Mutex
	started []string
}

func (p *mockProgress) Start(label string) csvstage.ProgressHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = append(p.started, label)
	return mockHandle{}
}

type mockHandle struct{}

func (mockHandle) Stop() {}
