package csvstage_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vvka-141/csvstage/pkg/csvstage"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, csvstage.ExitSuccess},
		{"general error", errors.New("something went wrong"), csvstage.ExitGeneralError},
		{"unknown flag", errors.New("unknown flag --foo"), csvstage.ExitUsageError},
		{"unknown shorthand flag", errors.New("unknown shorthand flag: 'x'"), csvstage.ExitUsageError},
		{"accepts args", errors.New("accepts at most 1 arg(s), received 2"), csvstage.ExitUsageError},
		{"invalid argument", errors.New("invalid argument \"abc\" for \"--timeout\""), csvstage.ExitUsageError},
		{"config", fmt.Errorf("missing SQL_SERVER_DATABASE: %w", csvstage.ErrInvalidConfig), csvstage.ExitConfigError},
		{"auth method", csvstage.ErrUnsupportedAuthMethod, csvstage.ExitConfigError},
		{"connection failed", csvstage.ErrConnectionFailed, csvstage.ExitConnectionError},
		{"schema mismatch", fmt.Errorf("b.csv: %w", csvstage.ErrSchemaMismatch), csvstage.ExitSchemaError},
		{"malformed csv", csvstage.ErrMalformedCSV, csvstage.ExitSchemaError},
		{"invalid identifier", csvstage.ErrInvalidIdentifier, csvstage.ExitTableCreateFailed},
		{"ddl failed", csvstage.ErrTableCreateFailed, csvstage.ExitTableCreateFailed},
		{"load failed", fmt.Errorf("a.csv: %w", csvstage.ErrLoadFailed), csvstage.ExitLoadFailed},
		{"interrupted", csvstage.ErrInterrupted, csvstage.ExitInterrupted},
		{"interrupted wins over load failure", errors.Join(csvstage.ErrLoadFailed, csvstage.ErrInterrupted), csvstage.ExitInterrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := csvstage.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
