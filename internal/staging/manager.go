package staging

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vvka-141/csvstage/internal/db"
	"github.com/vvka-141/csvstage/pkg/csvstage"
)

const (
	stmtXactAbortOn  = "SET XACT_ABORT ON"
	stmtXactAbortOff = "SET XACT_ABORT OFF"
)

// RowCounter counts the data lines of a CSV file.
type RowCounter interface {
	CountDataRows(path string) (int, error)
}

// Manager creates staging tables and loads CSV batches over one pinned connection.
// Manager is NOT safe for concurrent use: it drives a single server session.
type Manager struct {
	conn     csvstage.SQLConn
	counter  RowCounter
	progress csvstage.ProgressReporter
	logger   csvstage.Logger
	opts     csvstage.LoadOptions
}

// NewManager creates a Manager.
// Panics if any dependency is nil.
func NewManager(
	conn csvstage.SQLConn,
	counter RowCounter,
	progress csvstage.ProgressReporter,
	logger csvstage.Logger,
	opts csvstage.LoadOptions,
) *Manager {
	if conn == nil {
		panic("conn cannot be nil")
	}
	if counter == nil {
		panic("counter cannot be nil")
	}
	if progress == nil {
		panic("progress cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Manager{
		conn:     conn,
		counter:  counter,
		progress: progress,
		logger:   logger,
		opts:     opts,
	}
}

// CreateStagingTable creates table with one text column per schema entry
// unless a table of that name already exists in the schema. It never alters
// an existing table. The returned table has its schema resolved.
func (m *Manager) CreateStagingTable(ctx context.Context, table csvstage.StagingTable, columns csvstage.ColumnSchema) (csvstage.StagingTable, error) {
	table = m.resolveSchema(table)

	ddl, err := m.createTableStatement(table, columns)
	if err != nil {
		return csvstage.StagingTable{}, err
	}

	m.logger.Verbose("Creating staging table %s if absent", table)
	m.logger.Verbose("SQL: %s", ddl)

	tx, err := m.conn.BeginTx(ctx, nil)
	if err != nil {
		return csvstage.StagingTable{}, m.classify(ctx, err, fmt.Sprintf("failed to begin DDL transaction for %s", table), csvstage.ErrTableCreateFailed)
	}

	if _, err := tx.ExecContext(ctx, ddl, table.Name, table.Schema); err != nil {
		m.rollback(tx)
		return csvstage.StagingTable{}, m.classify(ctx, err, fmt.Sprintf("failed to create %s", table), csvstage.ErrTableCreateFailed)
	}

	if err := tx.Commit(); err != nil {
		return csvstage.StagingTable{}, m.classify(ctx, err, fmt.Sprintf("failed to commit creation of %s", table), csvstage.ErrTableCreateFailed)
	}

	m.logger.Info("Staging table %s is ready", table)
	return table, nil
}

// InsertCSVData bulk-loads every file of the set into table inside a single
// transaction. Files are loaded in set order.
//
// On success every FileLoad is marked committed. On a load failure or an
// interruption the transaction is rolled back and an empty LoadResult is
// returned together with an error wrapping ErrLoadFailed or ErrInterrupted.
// The progress activity started for a file is always stopped and joined
// before the next file and before returning.
func (m *Manager) InsertCSVData(ctx context.Context, table csvstage.StagingTable, files csvstage.FileSet) (csvstage.LoadResult, error) {
	table = m.resolveSchema(table)
	if err := m.validateTable(table); err != nil {
		return csvstage.LoadResult{}, err
	}
	if files.Len() == 0 {
		return csvstage.LoadResult{}, nil
	}

	if _, err := m.conn.ExecContext(ctx, stmtXactAbortOn); err != nil {
		return csvstage.LoadResult{}, m.classify(ctx, err, "failed to enable XACT_ABORT", csvstage.ErrLoadFailed)
	}
	defer m.resetSession(ctx)

	// The transaction is not bound to ctx: rollback on interruption is
	// issued explicitly below so it happens exactly once, in order.
	tx, err := m.conn.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return csvstage.LoadResult{}, m.classify(ctx, err, "failed to begin load transaction", csvstage.ErrLoadFailed)
	}

	loads := make([]csvstage.FileLoad, 0, files.Len())
	for _, name := range files.Files {
		if err := ctx.Err(); err != nil {
			m.rollback(tx)
			m.logger.Error("Load interrupted before %s; all files rolled back", name)
			return csvstage.LoadResult{}, fmt.Errorf("load interrupted before %s: %w", name, csvstage.ErrInterrupted)
		}

		load, err := m.loadFile(ctx, tx, table, files, name)
		if err != nil {
			m.rollback(tx)
			if errors.Is(err, csvstage.ErrInterrupted) {
				m.logger.Error("Load interrupted during %s; all files rolled back", name)
			} else {
				m.logger.Error("Loading %s failed; all files rolled back", name)
			}
			return csvstage.LoadResult{}, err
		}
		loads = append(loads, load)
	}

	if err := tx.Commit(); err != nil {
		return csvstage.LoadResult{}, m.classify(ctx, err, "failed to commit load transaction", csvstage.ErrLoadFailed)
	}

	for i := range loads {
		loads[i].Committed = true
	}
	result := csvstage.LoadResult{Files: loads, Committed: true}

	m.logger.Info("Rows per file: %s", result.FormatRowCounts())
	return result, nil
}

// loadFile counts and bulk-loads one file inside tx with the progress activity running.
func (m *Manager) loadFile(ctx context.Context, tx *sql.Tx, table csvstage.StagingTable, files csvstage.FileSet, name string) (csvstage.FileLoad, error) {
	rows, err := m.counter.CountDataRows(files.Path(name))
	if err != nil {
		return csvstage.FileLoad{}, fmt.Errorf("failed to count rows of %s: %w: %w", name, csvstage.ErrLoadFailed, err)
	}
	rows = max(rows-(m.firstRow()-csvstage.DefaultFirstRow), 0)

	stmt := m.bulkInsertStatement(table, m.serverPath(files, name))
	m.logger.Info("Total lines to insert for %s: %d", name, rows)
	m.logger.Verbose("SQL: %s", stmt)

	handle := m.progress.Start(name)
	res, err := tx.ExecContext(ctx, stmt)
	handle.Stop()

	if err != nil {
		return csvstage.FileLoad{}, m.classify(ctx, err, fmt.Sprintf("failed to load %s into %s", name, table), csvstage.ErrLoadFailed)
	}

	inserted := int64(-1)
	if n, err := res.RowsAffected(); err == nil {
		inserted = n
	}
	if inserted >= 0 && inserted != int64(rows) {
		m.logger.Info("Warning: %s has %d data lines but the server reported %d rows inserted", name, rows, inserted)
	}
	m.logger.Info("%s has finished inserting.", name)

	return csvstage.FileLoad{Name: name, Rows: rows, Inserted: inserted}, nil
}

// classify wraps a database error as an interruption when ctx was cancelled,
// and as sentinel otherwise.
func (m *Manager) classify(ctx context.Context, err error, msg string, sentinel error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%s: %w: %w", msg, csvstage.ErrInterrupted, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, sentinel, err)
}

func (m *Manager) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		m.logger.Verbose("Rollback reported: %v", err)
	}
}

// resetSession restores XACT_ABORT on every exit path, even after cancellation.
func (m *Manager) resetSession(ctx context.Context) {
	if _, err := m.conn.ExecContext(context.WithoutCancel(ctx), stmtXactAbortOff); err != nil {
		m.logger.Verbose("Failed to reset XACT_ABORT: %v", err)
	}
}

func (m *Manager) resolveSchema(table csvstage.StagingTable) csvstage.StagingTable {
	if table.Schema == "" {
		table.Schema = m.opts.Schema
	}
	if table.Schema == "" {
		table.Schema = csvstage.DefaultSchema
	}
	return table
}

func (m *Manager) validateTable(table csvstage.StagingTable) error {
	if err := db.ValidateTableName(table.Name); err != nil {
		return err
	}
	if err := db.ValidateTableName(table.Schema); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

// createTableStatement builds the guarded DDL. Table and schema names are
// passed to the catalog lookup as @p1 and @p2.
func (m *Manager) createTableStatement(table csvstage.StagingTable, columns csvstage.ColumnSchema) (string, error) {
	if err := m.validateTable(table); err != nil {
		return "", err
	}
	if err := db.ValidateColumnNames(columns); err != nil {
		return "", err
	}

	columnType := m.opts.ColumnType
	if columnType == "" {
		columnType = csvstage.DefaultColumnType
	}
	columnType, err := db.ValidateColumnType(columnType)
	if err != nil {
		return "", err
	}

	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = db.QuoteIdentifier(col) + " " + columnType
	}

	return fmt.Sprintf(
		"IF NOT EXISTS (SELECT 1 FROM sys.tables WHERE name = @p1 AND schema_id = SCHEMA_ID(@p2)) BEGIN CREATE TABLE %s (%s) END",
		db.QualifiedName(table), strings.Join(defs, ", "),
	), nil
}

func (m *Manager) bulkInsertStatement(table csvstage.StagingTable, path string) string {
	fieldTerm := m.opts.FieldTerminator
	if fieldTerm == "" {
		fieldTerm = csvstage.DefaultFieldTerminator
	}
	rowTerm := m.opts.RowTerminator
	if rowTerm == "" {
		rowTerm = csvstage.DefaultRowTerminator
	}

	return fmt.Sprintf(
		"BULK INSERT %s FROM %s WITH (FIELDTERMINATOR = %s, ROWTERMINATOR = %s, FIRSTROW = %d)",
		db.QualifiedName(table), db.QuoteLiteral(path), db.QuoteLiteral(fieldTerm), db.QuoteLiteral(rowTerm), m.firstRow(),
	)
}

func (m *Manager) firstRow() int {
	if m.opts.FirstRow < 1 {
		return csvstage.DefaultFirstRow
	}
	return m.opts.FirstRow
}

// serverPath returns the path SQL Server reads name from. With no
// ServerDirectory configured the server shares the local path, made absolute
// because the server would resolve a relative one against its own directory.
func (m *Manager) serverPath(files csvstage.FileSet, name string) string {
	dir := m.opts.ServerDirectory
	if dir == "" {
		local := files.Path(name)
		if abs, err := filepath.Abs(local); err == nil {
			return abs
		}
		return local
	}
	sep := "/"
	if strings.Contains(dir, `\`) {
		sep = `\`
	}
	return strings.TrimRight(dir, `/\`) + sep + name
}
