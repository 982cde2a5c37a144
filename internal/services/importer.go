package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/csvstage/internal/staging"
	"github.com/vvka-141/csvstage/pkg/csvstage"
)

// ImportService implements the Importer interface.
// Thread-Safety: NOT safe for concurrent Run() calls on the same instance.
type ImportService struct {
	connectorFactory func(*csvstage.ConnectionConfig) (csvstage.Connector, error)
	scanner          csvstage.FileScanner
	namer            csvstage.TableNamer
	progress         csvstage.ProgressReporter
	logger           csvstage.Logger

	newRunID func() uuid.UUID
	now      func() time.Time
}

// NewImportService creates a new ImportService with all dependencies injected.
// Panics on nil dependencies; runtime failures are returned as errors from Run.
func NewImportService(
	connectorFactory func(*csvstage.ConnectionConfig) (csvstage.Connector, error),
	scanner csvstage.FileScanner,
	namer csvstage.TableNamer,
	progress csvstage.ProgressReporter,
	logger csvstage.Logger,
) *ImportService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if scanner == nil {
		panic("scanner cannot be nil")
	}
	if namer == nil {
		panic("namer cannot be nil")
	}
	if progress == nil {
		panic("progress cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &ImportService{
		connectorFactory: connectorFactory,
		scanner:          scanner,
		namer:            namer,
		progress:         progress,
		logger:           logger,
		newRunID:         uuid.New,
		now:              time.Now,
	}
}

// Run executes one import: validate, connect, verify headers, resolve the
// table name, create the table and load every file in one transaction.
// A directory without CSV files is a successful run with zero files.
// The returned Summary is non-nil whenever validation passed.
func (s *ImportService) Run(ctx context.Context, config csvstage.LoadConfig) (*csvstage.Summary, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	start := s.now()
	summary := &csvstage.Summary{RunID: s.newRunID()}
	defer func() { summary.Duration = s.now().Sub(start) }()

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	s.logger.Verbose("Run %s: importing %s into %s/%s", summary.RunID, config.SourcePath, config.Connection.Server, config.Connection.Database)

	session, err := s.connect(ctx, &config.Connection)
	if err != nil {
		return summary, s.annotate(ctx, err, config.Timeout)
	}
	defer func() {
		if err := session.Close(); err != nil {
			s.logger.Verbose("Closing session: %v", err)
			return
		}
		s.logger.Info("Connection closed.")
	}()

	batch, err := s.scanner.Verify(config.SourcePath, config.Load.FieldTerminator)
	if err != nil {
		return summary, err
	}
	if batch == nil {
		return summary, nil
	}
	summary.FilesDiscovered = batch.Files.Len()

	name, err := s.namer.TableName(ctx)
	if err != nil {
		return summary, s.annotate(ctx, err, config.Timeout)
	}

	manager := staging.NewManager(session.Conn(), s.scanner, s.progress, s.logger, config.Load)

	table, err := manager.CreateStagingTable(ctx, csvstage.StagingTable{Schema: config.Load.Schema, Name: name}, batch.Columns)
	if err != nil {
		return summary, s.annotate(ctx, err, config.Timeout)
	}
	summary.Table = table

	result, err := manager.InsertCSVData(ctx, table, batch.Files)
	summary.Load = result
	if err != nil {
		return summary, s.annotate(ctx, err, config.Timeout)
	}

	return summary, nil
}

func (s *ImportService) connect(ctx context.Context, config *csvstage.ConnectionConfig) (csvstage.Session, error) {
	connector, err := s.connectorFactory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}

	session, err := connector.Connect(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("connecting: %w: %w", csvstage.ErrInterrupted, err)
		}
		return nil, err
	}

	s.logger.Info("Connected to %s", serverLabel(session, config))
	return session, nil
}

// annotate names the run timeout when it, rather than the operator, ended the run.
func (s *ImportService) annotate(ctx context.Context, err error, timeout time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && errors.Is(err, csvstage.ErrInterrupted) {
		return fmt.Errorf("run exceeded timeout of %s: %w", timeout, err)
	}
	return err
}

func serverLabel(session csvstage.Session, config *csvstage.ConnectionConfig) string {
	name := session.ServerName()
	if name == "" {
		name = config.Server
	}
	return name + "/" + config.Database
}

var _ csvstage.Importer = (*ImportService)(nil)
