package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vvka-141/csvstage/internal/config"
	"github.com/vvka-141/csvstage/internal/db"
	"github.com/vvka-141/csvstage/internal/files/scanner"
	"github.com/vvka-141/csvstage/internal/logging"
	"github.com/vvka-141/csvstage/internal/progress"
	"github.com/vvka-141/csvstage/internal/services"
	"github.com/vvka-141/csvstage/internal/tui"
	"github.com/vvka-141/csvstage/internal/ui"
	"github.com/vvka-141/csvstage/pkg/csvstage"
)

var loadCmd = &cobra.Command{
	Use:   "load [csv_dir]",
	Short: "Load every CSV file in a directory into a staging table",
	Long: `Load verifies, creates and bulk-loads in one run:

1. Lists the .csv files in the directory and checks that all headers match
2. Connects to SQL Server using the selected authentication method
3. Creates the staging table (one text column per header field) if absent
4. Bulk-loads every file inside a single transaction

If any file fails, or the run is interrupted, nothing from this run is kept.

Arguments:
  csv_dir    Directory holding the CSV files (default: $CSV_FILEPATH).
             SQL Server reads the files itself, so the directory must be
             visible to the server. Use --server-path when the server sees
             it under a different path.

Required settings (flag, environment or csvstage.yaml):
  SQL_SERVER_INSTANCE   Server instance: host, host\instance or host,port
  SQL_SERVER_DATABASE   Target database
  CSV_FILEPATH          Directory with the CSV files

Trusted Authentication:
  Windows uses the logged-on identity. Other hosts use Kerberos: run kinit
  first, or point $KRB5_KTNAME at a keytab and pass --username.
  $KRB5_CONFIG, $KRB5CCNAME and the connection.kerberos section of
  csvstage.yaml locate the krb5 files.

Password Authentication:
  For security, the password is NOT accepted as a CLI flag. Use
  $SQL_SERVER_PASSWORD or answer the prompt on an interactive terminal.

Examples:
  # Trusted authentication, table name prompted
  csvstage load ./drop -S sql01 -d staging

  # SQL login in CI, everything from the environment
  SQL_SERVER_AUTH=sql SQL_SERVER_USER=loader csvstage load --table stg_orders

  # Server reads the drop through its own mount
  csvstage load ./drop -S sql01 -d staging -t stg_orders --server-path 'D:\drops\orders'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLoad,
}

type loadFlagValues struct {
	server, database, username, authMethod, encrypt string
	trustServerCertificate                          bool
	cloudSQLInstance                                string
	azureTenantID, azureClientID                    string

	table, schema, columnType      string
	fieldTerminator, rowTerminator string
	firstRow                       int
	serverPath                     string

	configPath string
	timeout    time.Duration
}

var loadFlags loadFlagValues

func init() {
	rootCmd.AddCommand(loadCmd)

	// Connection flags
	// Precedence: flag > environment variable > csvstage.yaml > default
	loadCmd.Flags().StringVarP(&loadFlags.server, "server", "S", "",
		"SQL Server instance: host, host\\instance or host,port\n"+
			"Precedence: --server > $SQL_SERVER_INSTANCE > csvstage.yaml")
	loadCmd.Flags().StringVarP(&loadFlags.database, "database", "d", "",
		"Target database\n"+
			"Precedence: --database > $SQL_SERVER_DATABASE > csvstage.yaml")
	loadCmd.Flags().StringVarP(&loadFlags.username, "username", "U", "",
		"SQL login for --auth sql (default: $SQL_SERVER_USER)")
	loadCmd.Flags().StringVar(&loadFlags.authMethod, "auth", "",
		"Authentication method: trusted|sql|azure\n"+
			"(default: $SQL_SERVER_AUTH, or trusted)")
	loadCmd.Flags().StringVar(&loadFlags.encrypt, "encrypt", "",
		"Connection encryption: disable|false|true|strict")
	loadCmd.Flags().BoolVar(&loadFlags.trustServerCertificate, "trust-server-certificate", false,
		"Accept the server certificate without validation")
	loadCmd.Flags().StringVar(&loadFlags.cloudSQLInstance, "cloudsql-instance", "",
		"Connect through the Cloud SQL connector (project:region:instance)\n"+
			"Overrides $CSVSTAGE_CLOUDSQL_INSTANCE")

	// Azure Entra ID flags
	loadCmd.Flags().StringVar(&loadFlags.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	loadCmd.Flags().StringVar(&loadFlags.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")

	// Staging flags
	loadCmd.Flags().StringVarP(&loadFlags.table, "table", "t", "",
		"Staging table name (default: $CSVSTAGE_TABLE, otherwise prompted)")
	loadCmd.Flags().StringVar(&loadFlags.schema, "schema", "",
		"Schema the staging table is created in (default: dbo)")
	loadCmd.Flags().StringVar(&loadFlags.columnType, "column-type", "",
		"Column type for every staging column (default: VARCHAR(255))\n"+
			"Allowed: VARCHAR(n), NVARCHAR(n), VARCHAR(MAX), NVARCHAR(MAX)")
	loadCmd.Flags().StringVar(&loadFlags.fieldTerminator, "field-terminator", "",
		"BULK INSERT field terminator (default: ,)")
	loadCmd.Flags().StringVar(&loadFlags.rowTerminator, "row-terminator", "",
		"BULK INSERT row terminator (default: 0x0a)")
	loadCmd.Flags().IntVar(&loadFlags.firstRow, "first-row", csvstage.DefaultFirstRow,
		"First line BULK INSERT loads; 2 skips the header")
	loadCmd.Flags().StringVar(&loadFlags.serverPath, "server-path", "",
		"Directory as seen by SQL Server when it differs from csv_dir\n"+
			"(default: $CSVSTAGE_SERVER_PATH)")

	loadCmd.Flags().StringVar(&loadFlags.configPath, "config", "",
		"Path to a config file (default: ./csvstage.yaml when present)")
	loadCmd.Flags().DurationVar(&loadFlags.timeout, "timeout", csvstage.DefaultTimeout,
		"Upper bound for the whole run\n"+
			"Examples: 30m, 2h")
}

// buildLoadConfig builds a LoadConfig from CLI flags, environment and csvstage.yaml.
// Missing required values are left empty for LoadConfig.Validate to report together.
func buildLoadConfig(cmd *cobra.Command, args []string, verbose bool) (csvstage.LoadConfig, error) {
	_ = godotenv.Load()

	project, err := loadProjectConfig(loadFlags.configPath)
	if err != nil {
		return csvstage.LoadConfig{}, err
	}
	var pc config.ProjectConfig
	if project != nil {
		pc = *project
	}

	connFlags := &db.ConnFlags{
		Server:                 loadFlags.server,
		Database:               loadFlags.database,
		Username:               loadFlags.username,
		AuthMethod:             loadFlags.authMethod,
		Encrypt:                loadFlags.encrypt,
		TrustServerCertificate: loadFlags.trustServerCertificate,
		CloudSQLInstance:       loadFlags.cloudSQLInstance,
	}
	azureFlags := &db.AzureFlags{
		TenantID: loadFlags.azureTenantID,
		ClientID: loadFlags.azureClientID,
	}

	conn, err := db.ResolveConnectionConfig(connFlags, azureFlags, db.LoadFromEnvironment(), project)
	if err != nil {
		return csvstage.LoadConfig{}, err
	}

	var argPath string
	if len(args) > 0 {
		argPath = args[0]
	}
	sourcePath := firstNonEmpty(argPath, os.Getenv(csvstage.EnvCSVPath), pc.Source)
	if sourcePath != "" {
		if err := checkSourceDirectory(sourcePath); err != nil {
			return csvstage.LoadConfig{}, err
		}
		// SQL Server resolves relative paths against its own working directory.
		abs, err := filepath.Abs(sourcePath)
		if err != nil {
			return csvstage.LoadConfig{}, fmt.Errorf("%s %q: %w: %w", csvstage.EnvCSVPath, sourcePath, csvstage.ErrInvalidConfig, err)
		}
		sourcePath = abs
	}

	opts := csvstage.DefaultLoadOptions()
	opts.Schema = firstNonEmpty(loadFlags.schema, pc.Load.Schema, opts.Schema)
	opts.ColumnType = firstNonEmpty(loadFlags.columnType, pc.Load.ColumnType, opts.ColumnType)
	opts.FieldTerminator = firstNonEmpty(loadFlags.fieldTerminator, pc.Load.FieldTerminator, opts.FieldTerminator)
	opts.RowTerminator = firstNonEmpty(loadFlags.rowTerminator, pc.Load.RowTerminator, opts.RowTerminator)
	opts.ServerDirectory = firstNonEmpty(loadFlags.serverPath, os.Getenv(csvstage.EnvServerPath), pc.Load.ServerDirectory)
	switch {
	case cmd.Flags().Changed("first-row"):
		opts.FirstRow = loadFlags.firstRow
	case pc.Load.FirstRow > 0:
		opts.FirstRow = pc.Load.FirstRow
	}

	// Apply timeout from csvstage.yaml if --timeout wasn't explicitly set
	timeout := loadFlags.timeout
	if pc.Timeout != "" && !cmd.Flags().Changed("timeout") {
		parsed, err := config.ParseDuration("timeout", pc.Timeout)
		if err != nil {
			return csvstage.LoadConfig{}, fmt.Errorf("%w: %w", csvstage.ErrInvalidConfig, err)
		}
		timeout = parsed
	}

	cfg := csvstage.LoadConfig{
		Connection: *conn,
		SourcePath: sourcePath,
		TableName:  firstNonEmpty(loadFlags.table, os.Getenv(csvstage.EnvTable), pc.Table),
		Load:       opts,
		Timeout:    timeout,
		Verbose:    verbose,
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] Connection resolved:\n")
		fmt.Fprintf(os.Stderr, "  Server: %s\n", cfg.Connection.Server)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", cfg.Connection.Database)
		fmt.Fprintf(os.Stderr, "  Auth Method: %s\n", cfg.Connection.AuthMethod)
		if cfg.Connection.CloudSQLInstance != "" {
			fmt.Fprintf(os.Stderr, "  Cloud SQL Instance: %s\n", cfg.Connection.CloudSQLInstance)
		}
		fmt.Fprintf(os.Stderr, "[VERBOSE] Source: %s\n", cfg.SourcePath)
	}

	return cfg, nil
}

// loadProjectConfig reads an explicit config file, or csvstage.yaml from the
// working directory when one exists.
func loadProjectConfig(path string) (*config.ProjectConfig, error) {
	if path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w: %w", path, csvstage.ErrInvalidConfig, err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(".")
	if errors.Is(err, config.ErrConfigNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w: %w", config.ConfigFileName, csvstage.ErrInvalidConfig, err)
	}
	return cfg, nil
}

func checkSourceDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s %q: %w: %w", csvstage.EnvCSVPath, path, csvstage.ErrInvalidConfig, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s %q is not a directory: %w", csvstage.EnvCSVPath, path, csvstage.ErrInvalidConfig)
	}
	return nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	cfg, err := buildLoadConfig(cmd, args, verbose)
	if err != nil {
		return err
	}

	interactive := tui.IsInteractive()

	if cfg.Connection.AuthMethod == csvstage.AuthMethodSQL && cfg.Connection.Password == "" && interactive {
		password, err := tui.PromptPassword(fmt.Sprintf("Password for %s: ", cfg.Connection.Username))
		if err != nil {
			return fmt.Errorf("%w: %w", csvstage.ErrInvalidConfig, err)
		}
		cfg.Connection.Password = password
	}

	namer, err := selectTableNamer(cfg.TableName, interactive)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(verbose)
	importer := services.NewImportService(
		func(c *csvstage.ConnectionConfig) (csvstage.Connector, error) {
			return db.NewConnector(c, logger)
		},
		scanner.NewScanner(logger),
		namer,
		selectProgress(interactive, tui.ColorEnabled()),
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals (Ctrl+C, SIGTERM); the load is rolled back
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, rolling back...")
			cancel()
		case <-ctx.Done():
		}
	}()

	summary, err := importer.Run(ctx, cfg)
	printSummary(cmd.OutOrStdout(), summary)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	return nil
}

// selectTableNamer picks how the staging table name is obtained.
// A configured name wins; otherwise the operator is asked.
func selectTableNamer(name string, interactive bool) (csvstage.TableNamer, error) {
	if name != "" {
		if err := db.ValidateTableName(name); err != nil {
			return nil, err
		}
		return ui.NewFixedTableNamer(name), nil
	}
	if interactive {
		return tui.NewTablePrompt(""), nil
	}
	return ui.NewLinePrompter(), nil
}

func selectProgress(interactive, color bool) csvstage.ProgressReporter {
	if !interactive {
		return progress.NewPlain(os.Stderr)
	}
	if !color {
		return progress.NewIndicator(os.Stderr, progress.WithoutColor())
	}
	return progress.NewIndicator(os.Stderr)
}

// printSummary reports how many files the run persisted.
func printSummary(w io.Writer, summary *csvstage.Summary) {
	if summary == nil {
		return
	}
	if n := summary.Load.FilesLoaded(); n > 0 {
		fmt.Fprintf(w, "%d files inserted.\n", n)
		return
	}
	fmt.Fprintln(w, "No files were inserted.")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
