package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "csvstage",
	Short: "Load a directory of CSV files into a SQL Server staging table",
	Long: `csvstage verifies that every CSV file in a directory shares one header,
creates a staging table with one text column per header field, and bulk-loads
all files in a single transaction. Either every file is loaded or none is.

Exit Codes:
  0   - Success (including a directory without CSV files)
  1   - General error
  2   - CLI usage error (invalid arguments or flags)
  3   - Panic or unexpected system error
  10  - Invalid configuration
  11  - Database connection failed
  12  - CSV headers are not uniform or a file is unreadable
  13  - Staging table could not be created
  14  - Bulk load failed and was rolled back
  130 - Interrupted (Ctrl+C); the load was rolled back`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
