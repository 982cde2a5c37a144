package csvstage

// FileScanner discovers CSV files and verifies their headers.
// Implementations must be safe for concurrent use by multiple goroutines.
type FileScanner interface {
	// Verify lists the CSV files in dir and checks that every file has the
	// same ordered header, split on fieldTerminator. It returns (nil, nil) when dir holds no CSV files
	// and an error wrapping ErrSchemaMismatch or ErrMalformedCSV when the
	// batch is rejected.
	Verify(dir, fieldTerminator string) (*Batch, error)

	// CountDataRows returns the number of lines after the header line.
	CountDataRows(path string) (int, error)
}
