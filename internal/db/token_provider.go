package db

import (
	"context"
	"time"
)

// TokenProvider abstracts cloud token acquisition for database authentication.
// This interface enables testability with mock providers.
type TokenProvider interface {
	// GetToken acquires an OAuth access token for the database.
	// Returns the token string and its expiry time.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String returns a human-readable description for logging.
	// Should NOT include secrets. Example: "AzureServicePrincipal(tenant=xxx, client=yyy)"
	String() string
}

// AzureSQLScope is the OAuth scope for Azure SQL Database and SQL Managed Instance.
const AzureSQLScope = "https://database.windows.net/.default"
