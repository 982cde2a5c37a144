package scanner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vvka-141/csvstage/internal/files/filesystem"
	"github.com/vvka-141/csvstage/pkg/csvstage"
)

const utf8BOM = "\uFEFF"

// Scanner discovers CSV files in a directory and verifies their headers.
// Scanner is safe for concurrent use by multiple goroutines as long as
// the provided fsProvider and logger are also thread-safe.
type Scanner struct {
	fsProvider filesystem.FileSystemProvider
	logger     csvstage.Logger
}

// NewScanner creates a scanner over the OS filesystem.
// Panics if logger is nil.
func NewScanner(logger csvstage.Logger) *Scanner {
	return NewScannerWithFS(filesystem.NewOSFileSystem(), logger)
}

// NewScannerWithFS creates a scanner with a custom filesystem provider.
// This is primarily useful for testing with in-memory filesystems.
// Panics if fsProvider or logger is nil.
func NewScannerWithFS(fsProvider filesystem.FileSystemProvider, logger csvstage.Logger) *Scanner {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Scanner{
		fsProvider: fsProvider,
		logger:     logger,
	}
}

// Verify lists the CSV files in dir and checks that they share one ordered header.
// Header lines are split on fieldTerminator, given in BULK INSERT notation, so
// the columns match what the load will see.
//
// Returns:
//   - (nil, nil) when dir contains no CSV files
//   - a Batch holding every file and the common header on success
//   - an error wrapping ErrSchemaMismatch or ErrMalformedCSV when the batch is rejected
func (s *Scanner) Verify(dir, fieldTerminator string) (*csvstage.Batch, error) {
	sep, err := csvstage.DecodeFieldTerminator(fieldTerminator)
	if err != nil {
		return nil, err
	}

	files, err := s.discover(dir)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		s.logger.Info("No CSV files in directory %s", dir)
		return nil, nil
	}
	s.logger.Info("Found %d CSV file(s) in %s", len(files), dir)
	for _, name := range files {
		s.logger.Verbose("  %s", name)
	}

	fileSet := csvstage.FileSet{Directory: dir, Files: files}

	var expected csvstage.ColumnSchema
	for i, name := range files {
		header, err := s.readHeader(fileSet.Path(name), sep)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			expected = header
			continue
		}
		if !header.Equal(expected) {
			s.logger.Error("Headers are not uniform")
			return nil, fmt.Errorf("%s has header %s, expected %s from %s: %w",
				name, header, expected, files[0], csvstage.ErrSchemaMismatch)
		}
	}

	s.logger.Info("Headers are uniform")
	s.logger.Verbose("Columns: %s", expected)

	return &csvstage.Batch{Files: fileSet, Columns: expected}, nil
}

// CountDataRows returns the number of lines after the header line.
// A final line without a trailing newline counts; a header-only file has 0 rows.
func (s *Scanner) CountDataRows(path string) (int, error) {
	f, err := s.fsProvider.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	lines := 0
	size := 0
	var last byte
	buf := make([]byte, 32*1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			for _, b := range chunk {
				if b == '\n' {
					lines++
				}
			}
			size += n
			last = chunk[n-1]
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if size > 0 && last != '\n' {
		lines++
	}
	if lines == 0 {
		return 0, nil
	}
	return lines - 1, nil
}

// discover returns the names of regular .csv files in dir, in lexical order.
func (s *Scanner) discover(dir string) ([]string, error) {
	info, err := s.fsProvider.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access CSV directory %q: %w: %w", dir, csvstage.ErrInvalidConfig, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("CSV path %q is not a directory: %w", dir, csvstage.ErrInvalidConfig)
	}

	entries, err := s.fsProvider.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), csvstage.CSVExtension) {
			continue
		}
		files = append(files, entry.Name())
	}
	return files, nil
}

// readHeader reads the first line of a file and splits it into column names.
func (s *Scanner) readHeader(path, sep string) (csvstage.ColumnSchema, error) {
	f, err := s.fsProvider.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	return ParseHeader(filepath.Base(path), line, sep)
}

// ParseHeader splits a raw header line on sep into trimmed column names.
// A UTF-8 byte order mark and the line terminator are stripped first.
// An empty sep means csvstage.DefaultFieldTerminator.
func ParseHeader(name, line, sep string) (csvstage.ColumnSchema, error) {
	if sep == "" {
		sep = csvstage.DefaultFieldTerminator
	}
	line = strings.TrimPrefix(line, utf8BOM)
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, fmt.Errorf("%s has no header line: %w", name, csvstage.ErrMalformedCSV)
	}

	fields := strings.Split(line, sep)
	columns := make(csvstage.ColumnSchema, len(fields))
	for i, field := range fields {
		columns[i] = strings.TrimSpace(field)
	}
	return columns, nil
}

var _ csvstage.FileScanner = (*Scanner)(nil)
