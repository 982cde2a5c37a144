package db

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/vvka-141/csvstage/pkg/csvstage"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns bounds the pool; a run pins one connection and the
	// ping borrows at most one more.
	DefaultMaxConns = 2

	// DefaultMaxConnIdleTime keeps the pinned connection alive during long loads.
	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(DefaultMaxConns)
	db.SetConnMaxIdleTime(DefaultMaxConnIdleTime)
}

// SQLServerConnector implements csvstage.Connector on top of go-mssqldb.
// Trusted and SQL logins use a plain DSN; Azure uses an access-token
// callback; a configured Cloud SQL instance swaps the network dialer.
type SQLServerConnector struct {
	config        *csvstage.ConnectionConfig
	tokenProvider TokenProvider
	logger        csvstage.Logger
}

// NewSQLServerConnector creates a connector. tokenProvider may be nil for
// trusted and SQL authentication.
// Panics if config or logger is nil.
func NewSQLServerConnector(config *csvstage.ConnectionConfig, tokenProvider TokenProvider, logger csvstage.Logger) *SQLServerConnector {
	if config == nil {
		panic("config cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &SQLServerConnector{
		config:        config,
		tokenProvider: tokenProvider,
		logger:        logger,
	}
}

// NewConnector is a factory function that creates the Connector for the
// ConnectionConfig's AuthMethod.
func NewConnector(config *csvstage.ConnectionConfig, logger csvstage.Logger) (csvstage.Connector, error) {
	switch config.AuthMethod {
	case csvstage.AuthMethodTrusted, csvstage.AuthMethodSQL:
		return NewSQLServerConnector(config, nil, logger), nil
	case csvstage.AuthMethodAzure:
		provider, err := NewAzureTokenProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", csvstage.ErrConnectionFailed, err)
		}
		return NewSQLServerConnector(config, provider, logger), nil
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, csvstage.ErrUnsupportedAuthMethod)
	}
}

// Connect opens the pool, pins one connection and verifies it.
func (c *SQLServerConnector) Connect(ctx context.Context) (csvstage.Session, error) {
	cfg := *c.config
	if cfg.CloudSQLInstance != "" {
		// The Cloud SQL connector already provides TLS.
		cfg.Encrypt = "disable"
	}

	dsn, err := BuildConnectionString(&cfg)
	if err != nil {
		return nil, err
	}

	connector, err := c.driverConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid connection settings: %w", csvstage.ErrConnectionFailed, err)
	}

	var closers []io.Closer
	if cfg.CloudSQLInstance != "" {
		dialer, err := NewCloudSQLDialer(ctx, cfg.CloudSQLInstance)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", csvstage.ErrConnectionFailed, err)
		}
		connector.Dialer = dialer
		closers = append(closers, dialer)
		c.logger.Verbose("Dialing through Cloud SQL instance %s", cfg.CloudSQLInstance)
	}

	db := sql.OpenDB(connector)
	configurePool(db)

	c.logger.Verbose("Connecting to %s/%s (%s authentication)", cfg.Server, cfg.Database, cfg.AuthMethod)
	session, err := OpenSession(ctx, db, closers...)
	if err != nil {
		return nil, wrapConnectionError(err, cfg.Server, cfg.Database)
	}
	c.logger.Verbose("Connected to server %s", session.ServerName())

	return session, nil
}

func (c *SQLServerConnector) driverConnector(dsn string) (*mssql.Connector, error) {
	if c.tokenProvider != nil {
		return mssql.NewConnectorWithAccessTokenProvider(dsn, accessTokenFunc(c.tokenProvider, c.logger))
	}
	return mssql.NewConnector(dsn)
}

// wrapConnectionError wraps raw driver errors with actionable guidance.
// The result always wraps csvstage.ErrConnectionFailed.
func wrapConnectionError(err error, server, database string) error {
	return fmt.Errorf("%w: %w", csvstage.ErrConnectionFailed, connectionHint(err, server, database))
}

func connectionHint(err error, server, database string) error {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - SQL Server is not running or not listening on TCP
  - Wrong host, port or instance name
  - Firewall blocking the connection

Original error: %w`, server, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host in "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable
  - Network connection issue

Original error: %w`, server, err)

	case strings.Contains(errStr, "login failed"):
		return fmt.Errorf(`login failed for database "%s"

Possible causes:
  - Wrong user or password (check $SQL_SERVER_USER and $SQL_SERVER_PASSWORD)
  - The login has no access to the database
  - Server only allows Windows authentication (try SQL_SERVER_AUTH=trusted)

Original error: %w`, database, err)

	case strings.Contains(errStr, "cannot open database"):
		return fmt.Errorf(`database "%s" is not available

Possible causes:
  - Database name is misspelled (check $SQL_SERVER_DATABASE)
  - Database is offline or being restored
  - The login has no user mapped in the database

Original error: %w`, database, err)

	case strings.Contains(errStr, "kerberos") || strings.Contains(errStr, "integrated") || strings.Contains(errStr, "sspi"):
		return fmt.Errorf(`integrated authentication failed

Possible causes:
  - No Kerberos ticket or krb5 configuration on this host
  - Service principal name not registered for %s
  - Use SQL_SERVER_AUTH=sql with a SQL login instead

Original error: %w`, server, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - SQL Browser unreachable for a named instance (UDP 1434)
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w`, server, err)

	case strings.Contains(errStr, "tls") || strings.Contains(errStr, "certificate"):
		return fmt.Errorf(`TLS connection error

Possible causes:
  - Server certificate is self-signed (use --trust-server-certificate)
  - Encryption setting does not match the server (check --encrypt)

Original error: %w`, err)

	default:
		return fmt.Errorf("failed to connect to %s: %w", server, err)
	}
}

var _ csvstage.Connector = (*SQLServerConnector)(nil)
