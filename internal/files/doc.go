// Package files provides file-related functionality organized into sub-packages.
//
//   - filesystem: Filesystem abstraction interfaces and implementations (OS and in-memory)
//   - scanner: CSV discovery, header verification and row counting
//
// # Usage
//
//	import (
//	    "github.com/vvka-141/csvstage/internal/files/scanner"
//	)
//
//	s := scanner.NewScanner(logger)
//	batch, err := s.Verify("./drop", ",")
//	if batch == nil && err == nil {
//	    // directory holds no CSV files
//	}
package files
