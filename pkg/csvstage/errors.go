package csvstage

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	summary, err := importer.Run(ctx, cfg)
//	if errors.Is(err, csvstage.ErrInterrupted) {
//	    // The operator pressed Ctrl+C; the load was rolled back
//	}
var (
	// ErrInvalidConfig indicates required configuration is missing or invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the database session could not be established.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrSchemaMismatch indicates the CSV files do not share one ordered header.
	ErrSchemaMismatch = errors.New("headers are not uniform")

	// ErrMalformedCSV indicates a CSV file has no readable header line.
	ErrMalformedCSV = errors.New("malformed csv file")

	// ErrInvalidIdentifier indicates a table, schema or column name failed validation.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrTableCreateFailed indicates the staging table DDL failed and was rolled back.
	ErrTableCreateFailed = errors.New("staging table creation failed")

	// ErrLoadFailed indicates a bulk load failed and the whole batch was rolled back.
	ErrLoadFailed = errors.New("bulk load failed")

	// ErrInterrupted indicates the operator interrupted the run.
	ErrInterrupted = errors.New("interrupted")
)

// usageErrorPatterns are the message prefixes cobra uses for argument and flag errors.
var usageErrorPatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInterrupted):
		return ExitInterrupted
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrSchemaMismatch), errors.Is(err, ErrMalformedCSV):
		return ExitSchemaError
	case errors.Is(err, ErrInvalidIdentifier), errors.Is(err, ErrTableCreateFailed):
		return ExitTableCreateFailed
	case errors.Is(err, ErrLoadFailed):
		return ExitLoadFailed
	}

	errStr := err.Error()
	for _, pattern := range usageErrorPatterns {
		if strings.HasPrefix(errStr, pattern) {
			return ExitUsageError
		}
	}

	return ExitGeneralError
}
