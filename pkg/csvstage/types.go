package csvstage

import (
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ColumnSchema is the ordered list of column names taken from a CSV header line.
type ColumnSchema []string

// Equal reports whether two schemas have the same names in the same order.
// Comparison is exact: case and whitespace are significant.
func (s ColumnSchema) Equal(other ColumnSchema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the schema as a parenthesized, comma-separated list.
func (s ColumnSchema) String() string {
	return "(" + strings.Join(s, ", ") + ")"
}

// FileSet is the ordered set of CSV files discovered in one directory scan.
// The order of Files is the discovery order and is used for loading.
type FileSet struct {
	// Directory is the local directory the files were found in.
	Directory string

	// Files holds file names (not paths), in discovery order.
	Files []string
}

// Len returns the number of files in the set.
func (f FileSet) Len() int {
	return len(f.Files)
}

// Path returns the local path of a file in the set.
func (f FileSet) Path(name string) string {
	return filepath.Join(f.Directory, name)
}

// Batch is the verified input for one run: files sharing one header schema.
type Batch struct {
	Files   FileSet
	Columns ColumnSchema
}

// StagingTable identifies the table CSV rows are loaded into.
type StagingTable struct {
	Schema string
	Name   string
}

// String returns the schema-qualified table name, unquoted.
func (t StagingTable) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// FileLoad is the outcome of bulk-loading one file.
type FileLoad struct {
	// Name is the file name within the FileSet.
	Name string

	// Rows is the number of data lines counted locally before the load.
	// It is informational and reports what was attempted.
	Rows int

	// Inserted is the row count reported by the server, or -1 when the
	// driver did not report one.
	Inserted int64

	// Committed is true once the batch transaction containing this file committed.
	Committed bool
}

// LoadResult aggregates the per-file outcomes of one bulk-load transaction.
type LoadResult struct {
	Files     []FileLoad
	Committed bool
}

// FilesLoaded returns the number of files persisted by the run.
// Uncommitted work never counts: a rolled-back batch reports 0.
func (r LoadResult) FilesLoaded() int {
	if !r.Committed {
		return 0
	}
	return len(r.Files)
}

// RowCounts returns attempted row counts keyed by file name.
func (r LoadResult) RowCounts() map[string]int {
	counts := make(map[string]int, len(r.Files))
	for _, f := range r.Files {
		counts[f.Name] = f.Rows
	}
	return counts
}

// TotalRows returns the sum of attempted rows across all files.
func (r LoadResult) TotalRows() int {
	total := 0
	for _, f := range r.Files {
		total += f.Rows
	}
	return total
}

// FormatRowCounts renders row counts as {a.csv: 3, b.csv: 5}, ordered by file name.
func (r LoadResult) FormatRowCounts() string {
	counts := r.RowCounts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", name, counts[name]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Summary is the run-level report produced by the driver.
type Summary struct {
	RunID           uuid.UUID
	Table           StagingTable
	FilesDiscovered int
	Load            LoadResult
	Duration        time.Duration
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodTrusted AuthMethod = iota // Integrated / OS identity
	AuthMethodSQL                       // SQL Server login and password
	AuthMethodAzure                     // Microsoft Entra ID access token
)

// String returns the configuration spelling of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodTrusted:
		return "trusted"
	case AuthMethodSQL:
		return "sql"
	case AuthMethodAzure:
		return "azure"
	default:
		return fmt.Sprintf("unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodTrusted && a <= AuthMethodAzure
}

// ParseAuthMethod converts a configuration value to an AuthMethod.
// An empty value selects trusted authentication.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "trusted", "integrated", "windows":
		return AuthMethodTrusted, nil
	case "sql", "password":
		return AuthMethodSQL, nil
	case "azure", "entra", "entraid":
		return AuthMethodAzure, nil
	default:
		return AuthMethodTrusted, fmt.Errorf("%q: %w", s, ErrUnsupportedAuthMethod)
	}
}

// ConnectionConfig represents resolved connection parameters.
type ConnectionConfig struct {
	// Server is the instance identifier: host, host\instance or host,port.
	Server   string
	Database string
	Username string
	Password string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName                string
	ConnectTimeout         time.Duration
	Encrypt                string
	TrustServerCertificate bool
	AdditionalParams       map[string]string

	// Azure Entra ID parameters (used when AuthMethod is AuthMethodAzure).
	// If all three are provided, Service Principal authentication is used.
	// Otherwise the DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// CloudSQLInstance routes connections through the Cloud SQL connector
	// when set (project:region:instance).
	CloudSQLInstance string

	// Kerberos settings for trusted connections authenticated through krb5.
	Kerberos KerberosConfig
}

// KerberosConfig locates the krb5 files used for trusted authentication on
// hosts without Windows SSPI. Empty fields fall back to the driver defaults
// (KRB5_CONFIG, then /etc/krb5.conf).
type KerberosConfig struct {
	ConfigFile    string
	KeytabFile    string
	CredCacheFile string
	Realm         string
}

// IsSet reports whether any Kerberos setting was given.
func (k KerberosConfig) IsSet() bool {
	return k != KerberosConfig{}
}

// LoadOptions controls the DDL and BULK INSERT statements.
type LoadOptions struct {
	Schema          string
	ColumnType      string
	FieldTerminator string
	RowTerminator   string
	FirstRow        int

	// ServerDirectory is the directory as seen by SQL Server when it differs
	// from the local source directory. Empty means the local path is used.
	ServerDirectory string
}

// DefaultLoadOptions returns the options matching a plain comma-separated drop.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Schema:          DefaultSchema,
		ColumnType:      DefaultColumnType,
		FieldTerminator: DefaultFieldTerminator,
		RowTerminator:   DefaultRowTerminator,
		FirstRow:        DefaultFirstRow,
	}
}

// DecodeFieldTerminator returns the literal text BULK INSERT splits fields on
// for a FIELDTERMINATOR value. The \t escape and 0x hex notation are decoded;
// an empty value means DefaultFieldTerminator.
func DecodeFieldTerminator(term string) (string, error) {
	switch {
	case term == "":
		return DefaultFieldTerminator, nil
	case term == `\t`:
		return "\t", nil
	case len(term) > 2 && strings.EqualFold(term[:2], "0x"):
		b, err := hex.DecodeString(term[2:])
		if err != nil {
			return "", fmt.Errorf("field terminator %q is not valid hex: %w", term, ErrInvalidConfig)
		}
		return string(b), nil
	}
	return term, nil
}

// LoadConfig contains all parameters needed for one import run.
type LoadConfig struct {
	Connection ConnectionConfig

	// SourcePath is the directory scanned for CSV files
	SourcePath string

	// TableName is the staging table; empty means the operator is prompted
	TableName string

	Load LoadOptions

	// Timeout bounds the whole run
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the LoadConfig has all required fields and valid values.
// It returns a multi-error naming every missing value at once.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.Connection.Server == "" {
		errs = append(errs, fmt.Errorf("%s is required: %w", EnvServerInstance, ErrInvalidConfig))
	}

	if c.Connection.Database == "" {
		errs = append(errs, fmt.Errorf("%s is required: %w", EnvDatabase, ErrInvalidConfig))
	}

	if c.SourcePath == "" {
		errs = append(errs, fmt.Errorf("%s is required: %w", EnvCSVPath, ErrInvalidConfig))
	}

	if !c.Connection.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %s: %w", c.Connection.AuthMethod, ErrInvalidConfig))
	}

	if c.Connection.AuthMethod == AuthMethodSQL && c.Connection.Username == "" {
		errs = append(errs, fmt.Errorf("%s is required for sql authentication: %w", EnvUser, ErrInvalidConfig))
	}

	if c.Load.FirstRow < 1 {
		errs = append(errs, fmt.Errorf("first row must be at least 1: %w", ErrInvalidConfig))
	}

	if _, err := DecodeFieldTerminator(c.Load.FieldTerminator); err != nil {
		errs = append(errs, err)
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}
