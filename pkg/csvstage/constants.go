package csvstage

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
//   - 130: Terminated by the operator (128 + SIGINT)
const (
	ExitSuccess           = 0   // Load completed (or nothing to load)
	ExitGeneralError      = 1   // Unknown or unclassified error
	ExitUsageError        = 2   // CLI usage error (missing args, invalid flags)
	ExitPanic             = 3   // Internal panic (unexpected crash)
	ExitConfigError       = 10  // Missing or invalid configuration
	ExitConnectionError   = 11  // Failed to connect to SQL Server
	ExitSchemaError       = 12  // CSV headers are not uniform or unreadable
	ExitTableCreateFailed = 13  // Staging table DDL failed
	ExitLoadFailed        = 14  // Bulk load failed and was rolled back
	ExitInterrupted       = 130 // Operator interrupted the load
)

const (
	// CSVExtension is the file extension recognized by the header verifier.
	// Matching is case-insensitive.
	CSVExtension = ".csv"

	// DefaultSchema is the SQL Server schema staging tables are created in.
	DefaultSchema = "dbo"

	// DefaultColumnType is the text type used for every staging column.
	DefaultColumnType = "VARCHAR(255)"

	// DefaultFieldTerminator separates fields in BULK INSERT.
	DefaultFieldTerminator = ","

	// DefaultRowTerminator separates rows in BULK INSERT (a bare LF).
	DefaultRowTerminator = "0x0a"

	// DefaultFirstRow skips the header line in BULK INSERT.
	DefaultFirstRow = 2

	// DefaultAppName is reported to SQL Server as the client application name.
	DefaultAppName = "csvstage"

	// DefaultTimeout bounds the whole run. Bulk loads of large drops can be slow,
	// so this is deliberately generous.
	DefaultTimeout = 2 * time.Hour

	// DefaultConnectTimeout bounds establishing the database session.
	DefaultConnectTimeout = 30 * time.Second

	// MaxIdentifierLength is the SQL Server limit for sysname identifiers.
	MaxIdentifierLength = 128

	// ProgressTick is how long each progress frame stays visible.
	ProgressTick = 1 * time.Second

	// ProgressPause is the blank interval between progress frames.
	ProgressPause = 200 * time.Millisecond
)

// Environment variable names read by the CLI.
const (
	EnvServerInstance   = "SQL_SERVER_INSTANCE"
	EnvDatabase         = "SQL_SERVER_DATABASE"
	EnvCSVPath          = "CSV_FILEPATH"
	EnvAuthMethod       = "SQL_SERVER_AUTH"
	EnvUser             = "SQL_SERVER_USER"
	EnvPassword         = "SQL_SERVER_PASSWORD"
	EnvTable            = "CSVSTAGE_TABLE"
	EnvServerPath       = "CSVSTAGE_SERVER_PATH"
	EnvCloudSQLInstance = "CSVSTAGE_CLOUDSQL_INSTANCE"
	EnvAzureTenantID    = "AZURE_TENANT_ID"
	EnvAzureClientID    = "AZURE_CLIENT_ID"
	EnvAzureSecret      = "AZURE_CLIENT_SECRET"
	EnvKrb5Config       = "KRB5_CONFIG"
	EnvKrb5Keytab       = "KRB5_KTNAME"
	EnvKrb5CredCache    = "KRB5CCNAME"
	EnvNonInteractive   = "CSVSTAGE_NON_INTERACTIVE"
)

// RequiredEnvVars lists the variables that must be resolved before a run starts.
var RequiredEnvVars = []string{EnvServerInstance, EnvDatabase, EnvCSVPath}
