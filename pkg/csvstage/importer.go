package csvstage

import "context"

// Importer is the main interface for running a CSV import.
// Implementations handle the full workflow: connect, verify headers,
// create the staging table, bulk-load and report.
type Importer interface {
	// Run executes one import. The session is always released before Run returns.
	Run(ctx context.Context, config LoadConfig) (*Summary, error)
}
