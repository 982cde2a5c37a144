package csvstage

import "context"

// TableNamer supplies the staging table name for a run.
//
// Implementations:
//   - FixedTableNamer: Uses a name from flags, environment or config file
//   - LinePrompter: Prompts on the console until a valid name is entered
//   - the bubbletea prompt in the tui package for interactive terminals
type TableNamer interface {
	// TableName returns a validated table name.
	// Returns an error if no valid name can be obtained or ctx is cancelled.
	TableName(ctx context.Context) (string, error)
}
